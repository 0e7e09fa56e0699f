package lint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCaseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want CaseStyle
		ok   bool
	}{
		{"camel", CaseCamel, true},
		{"Pascal", CasePascal, true},
		{"screaming-snake", CaseScreamingSnake, true},
		{" bem ", CaseBEM, true},
		{"hungarian", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCaseStyle(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCaseStyle_Pattern(t *testing.T) {
	tests := []struct {
		style CaseStyle
		good  []string
		bad   []string
	}{
		{CaseCamel, []string{"firstName", "i", "_private", "$el", "parseHTTP2"}, []string{"first_name", "FirstName", "first-name"}},
		{CasePascal, []string{"Button", "UserCard", "X"}, []string{"button", "User_Card"}},
		{CaseKebab, []string{"user-card", "a", "h1-title"}, []string{"userCard", "user--card", "-user"}},
		{CaseSnake, []string{"first_name", "_private", "x"}, []string{"firstName", "FIRST"}},
		{CaseScreamingSnake, []string{"MAX_SIZE", "API", "HTTP2_PORT"}, []string{"Max_Size", "_MAX", "MAX__SIZE"}},
		{CaseBEM, []string{"card", "card__title", "card--active", "card__title--large", "user-card__avatar-image"}, []string{"Card", "card__", "card___title", "card__title__text", "card_title"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			re := regexp.MustCompile(`^(?:` + tt.style.Pattern() + `)$`)
			for _, name := range tt.good {
				assert.True(t, re.MatchString(name), "%s should match %s", name, tt.style)
			}
			for _, name := range tt.bad {
				assert.False(t, re.MatchString(name), "%s should not match %s", name, tt.style)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		style CaseStyle
		want  string
	}{
		{"first_name", CaseCamel, "firstName"},
		{"FirstName", CaseCamel, "firstName"},
		{"user-card", CasePascal, "UserCard"},
		{"parseHTTPResponse", CaseKebab, "parse-http-response"},
		{"firstName", CaseSnake, "first_name"},
		{"maxSize", CaseScreamingSnake, "MAX_SIZE"},
		{"cardTitle__Header--isActive", CaseBEM, "card-title__header--is-active"},
		{"___", CaseCamel, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+string(tt.style), func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.name, tt.style))
		})
	}
}
