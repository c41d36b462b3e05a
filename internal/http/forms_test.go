package http

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors_UsesFormNames(t *testing.T) {
	form := registerForm{Name: " ", Email: "nope", Password: "short"}
	err := binding.Validator.ValidateStruct(&form)
	require.Error(t, err)

	errs := fieldErrors(err)
	assert.Equal(t, map[string]string{
		"name":     "This field is required.",
		"email":    "Invalid email address.",
		"password": "Field must be at least 12 characters long.",
	}, errs)
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	errs := fieldErrors(errors.New("boom"))
	assert.Contains(t, errs, "form")
}

func TestPostForm_Input(t *testing.T) {
	in := postForm{Title: "T", Subtitle: "S", ImgURL: "https://example.com/a.png", Body: "B"}.input()
	assert.Equal(t, "T", in.Title)
	assert.Equal(t, "https://example.com/a.png", in.ImgURL)
}
