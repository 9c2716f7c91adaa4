package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quill/internal/auth"
	"quill/internal/model"
)

var (
	anonymous = auth.Identity{}
	owner     = auth.Identity{UserID: 1}
	other     = auth.Identity{UserID: 2}
)

func TestCanViewPost(t *testing.T) {
	tests := []struct {
		name   string
		post   model.Post
		viewer auth.Identity
		want   Decision
	}{
		{"published visible to anonymous", model.Post{AuthorID: 1, Published: true}, anonymous, Allow},
		{"published visible to non-owner", model.Post{AuthorID: 1, Published: true}, other, Allow},
		{"published visible to owner", model.Post{AuthorID: 1, Published: true}, owner, Allow},
		{"draft hidden from anonymous", model.Post{AuthorID: 1, Published: false}, anonymous, Forbidden},
		{"draft hidden from non-owner", model.Post{AuthorID: 1, Published: false}, other, Forbidden},
		{"draft visible to owner", model.Post{AuthorID: 1, Published: false}, owner, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewPost(&tt.post, tt.viewer))
		})
	}
}

func TestCanEditPost(t *testing.T) {
	tests := []struct {
		name  string
		post  model.Post
		actor auth.Identity
		want  Decision
	}{
		{"owner may edit draft", model.Post{AuthorID: 1, Published: false}, owner, Allow},
		{"owner may edit published", model.Post{AuthorID: 1, Published: true}, owner, Allow},
		{"non-owner forbidden", model.Post{AuthorID: 1, Published: true}, other, Forbidden},
		{"anonymous unauthenticated", model.Post{AuthorID: 1, Published: true}, anonymous, Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditPost(&tt.post, tt.actor))
		})
	}
}

func TestCanEditProfile(t *testing.T) {
	assert.Equal(t, Allow, CanEditProfile(1, owner))
	assert.Equal(t, Forbidden, CanEditProfile(1, other))
	assert.Equal(t, Unauthenticated, CanEditProfile(1, anonymous))
}
