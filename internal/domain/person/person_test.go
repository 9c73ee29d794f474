package person

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_TrimsFields(t *testing.T) {
	p := New(" S001 ", "Aigerim ", " aigerim@uni.edu", "")

	assert.Equal(t, "S001", p.ID())
	assert.Equal(t, "Aigerim", p.Name())
	assert.Equal(t, "aigerim@uni.edu", p.Email())
	assert.Equal(t, "", p.Phone())
}

func TestContact(t *testing.T) {
	assert.Equal(t, "a@uni.edu", New("1", "A", "a@uni.edu", "").Contact())
	assert.Equal(t, "a@uni.edu, +7 700 000 0000", New("1", "A", "a@uni.edu", "+7 700 000 0000").Contact())
}
