package newsroom

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"path"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"newsdesk-service/internal/models"
)

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	slugPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s, strips accents and joins words with hyphens.
func Slugify(s string, maxLen int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := slugSeparators.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}

// ShortID returns n random alphanumeric characters.
func ShortID(n int) string {
	alphabet := big.NewInt(int64(len(shortIDAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			panic(err)
		}
		out[i] = shortIDAlphabet[idx.Int64()]
	}
	return string(out)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("banner_size", func(fl validator.FieldLevel) bool {
		return models.BannerSize(fl.Field().String()).Valid()
	})
	return v
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "slug":
		return "use only letters, numbers, underscores and hyphens"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "banner_size":
		return "unknown banner size"
	}
	return "failed " + fe.Tag() + " check"
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func validImageName(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }
