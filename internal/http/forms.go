package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"quillpost/internal/service"
)

type registerForm struct {
	Name     string `form:"name" binding:"required,notblank"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=12"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=12"`
}

type postForm struct {
	Title    string `form:"title" binding:"required,notblank"`
	Subtitle string `form:"subtitle" binding:"required,notblank"`
	ImgURL   string `form:"img_url" binding:"required,url"`
	Body     string `form:"body" binding:"required,notblank"`
}

func (f postForm) input() service.PostInput {
	return service.PostInput{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		ImgURL:   f.ImgURL,
		Body:     f.Body,
	}
}

func (f postForm) values() map[string]string {
	return map[string]string{
		"title":    f.Title,
		"subtitle": f.Subtitle,
		"img_url":  f.ImgURL,
		"body":     f.Body,
	}
}

type commentForm struct {
	Comment string `form:"comment" binding:"required,notblank"`
}

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}
}

// fieldErrors maps a binding error to per-field messages keyed by form name.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "The submitted form could not be read."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "url":
		return "Invalid URL."
	default:
		return "Invalid value."
	}
}
