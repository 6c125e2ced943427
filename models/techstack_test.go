package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTechStack(t *testing.T) {
	cases := []struct {
		name string
		raw  interface{}
		want TechStack
	}{
		{"nil", nil, TechStack{}},
		{"comma string", "Go, React ,, Docker", TechStack{"Go", "React", "Docker"}},
		{"empty string", "", TechStack{}},
		{"interface list", []interface{}{"Go", " ", "Redis", nil}, TechStack{"Go", "Redis"}},
		{"string list", []string{" Echo "}, TechStack{"Echo"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTechStack(tc.raw))
		})
	}
}

func TestProjectFormRoundTrip(t *testing.T) {
	p := Project{Title: "Site", TechStack: TechStack{"Go", "HTMX"}}
	form := ProjectFormFrom(p)
	assert.Equal(t, "Go, HTMX", form.TechStack)
	assert.Equal(t, p.TechStack, form.Project("").TechStack)
}
