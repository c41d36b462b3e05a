package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"quillpost/internal/domain"
	"quillpost/internal/service"
	"quillpost/internal/storage"
)

const (
	msgLoginToComment = "Only logged in users are able to comment."
	msgTitleTaken     = "A post with this title already exists."
)

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Posts": posts})
}

func (h *Handler) showPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	h.renderPost(c, http.StatusOK, post, nil, nil)
}

func (h *Handler) renderPost(c *gin.Context, status int, post *domain.Post, form, errs map[string]string) {
	comments, err := h.comments.ListForPost(c.Request.Context(), post.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	data := gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
	}
	if form != nil {
		data["Form"] = form
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(c, status, "post.html", data)
}

func (h *Handler) addComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	self := postPath(post.ID)

	id := currentIdentity(c)
	if !id.Authenticated() {
		h.setFlash(c, msgLoginToComment)
		redirect(c, self)
		return
	}

	var form commentForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.renderPost(c, http.StatusUnprocessableEntity, post, map[string]string{"comment": form.Comment}, fieldErrors(err))
		return
	}

	_, err := h.comments.Create(c.Request.Context(), id.User, post.ID, form.Comment)
	switch {
	case errors.Is(err, service.ErrEmptyComment):
		h.renderPost(c, http.StatusUnprocessableEntity, post, nil, map[string]string{"comment": "This field is required."})
		return
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
		return
	case err != nil:
		h.serverError(c, err)
		return
	}
	redirect(c, self)
}

func (h *Handler) newPostPage(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, "/new-post", "New Post", nil, nil)
}

func (h *Handler) createPost(c *gin.Context) {
	form, errs := h.bindPostForm(c)
	if errs != nil {
		h.renderPostForm(c, http.StatusUnprocessableEntity, "/new-post", "New Post", form.values(), errs)
		return
	}

	_, err := h.posts.Create(c.Request.Context(), currentIdentity(c).User, form.input())
	if !h.handlePostWriteErr(c, err, "/new-post", "New Post", form) {
		return
	}
	redirect(c, "/")
}

func (h *Handler) editPostPage(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	form := postForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	h.renderPostForm(c, http.StatusOK, editPath(post.ID), "Edit Post", form.values(), nil)
}

func (h *Handler) updatePost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	action := editPath(post.ID)

	form, errs := h.bindPostForm(c)
	if errs != nil {
		h.renderPostForm(c, http.StatusUnprocessableEntity, action, "Edit Post", form.values(), errs)
		return
	}

	updated, err := h.posts.Update(c.Request.Context(), post.ID, currentIdentity(c).User, form.input())
	if !h.handlePostWriteErr(c, err, action, "Edit Post", form) {
		return
	}
	redirect(c, postPath(updated.ID))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	err := h.posts.Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrPostNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	redirect(c, "/")
}

// handlePostWriteErr renders the outcome of a failed create or update and
// reports whether the write succeeded.
func (h *Handler) handlePostWriteErr(c *gin.Context, err error, action, heading string, form postForm) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrTitleTaken):
		h.renderPostForm(c, http.StatusConflict, action, heading, form.values(), map[string]string{"title": msgTitleTaken})
	case errors.Is(err, service.ErrInvalidPost):
		h.renderPostForm(c, http.StatusUnprocessableEntity, action, heading, form.values(), map[string]string{"form": "Please fill in every field."})
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
	default:
		h.serverError(c, err)
	}
	return false
}

// bindPostForm uploads an attached header image, if any, then binds and
// validates the post fields.
func (h *Handler) bindPostForm(c *gin.Context) (postForm, map[string]string) {
	var form postForm
	if problem := h.attachImage(c); problem != "" {
		_ = c.ShouldBindWith(&form, binding.Form)
		return form, map[string]string{"img_url": problem}
	}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		return form, fieldErrors(err)
	}
	return form, nil
}

// attachImage stores an uploaded img_file and makes its public URL the
// submitted img_url. It returns a message for the form when the upload fails.
func (h *Handler) attachImage(c *gin.Context) string {
	if h.images == nil {
		return ""
	}
	fh, err := c.FormFile("img_file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return ""
	}
	if err != nil {
		return "The uploaded image could not be read."
	}

	f, err := fh.Open()
	if err != nil {
		return "The uploaded image could not be read."
	}
	defer f.Close()

	url, err := h.images.UploadImage(c.Request.Context(), storage.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return "Unsupported image type."
	}
	if err != nil {
		h.log.WithError(err).Error("upload header image")
		return "The image upload failed."
	}
	c.Request.Form.Set("img_url", url)
	return ""
}

func (h *Handler) renderPostForm(c *gin.Context, status int, action, heading string, form, errs map[string]string) {
	data := gin.H{
		"Title":        heading,
		"Heading":      heading,
		"Action":       action,
		"ImageUploads": h.images != nil,
	}
	if form != nil {
		data["Form"] = form
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(c, status, "make-post.html", data)
}

// loadPost resolves the :id route parameter to an existing post, writing a
// not found page otherwise.
func (h *Handler) loadPost(c *gin.Context) (*domain.Post, bool) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return nil, false
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrPostNotFound) {
		h.notFound(c)
		return nil, false
	}
	if err != nil {
		h.serverError(c, fmt.Errorf("load post %d: %w", id, err))
		return nil, false
	}
	return post, true
}

func postPath(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10)
}

func editPath(id int64) string {
	return "/edit-post/" + strconv.FormatInt(id, 10)
}
