package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleFederated(t *testing.T) {
	r := NewRegistry([]string{"github"})
	backend, ok := r.SingleFederated()
	assert.True(t, ok)
	assert.Equal(t, "github", backend.Name)
	assert.Equal(t, "/api/auth/github/begin", backend.BeginURL)

	// Email alone is not a federated short-circuit
	r = NewRegistry([]string{"email"})
	_, ok = r.SingleFederated()
	assert.False(t, ok)

	// More than one backend never short-circuits
	r = NewRegistry([]string{"email", "github"})
	_, ok = r.SingleFederated()
	assert.False(t, ok)
}

func TestHasEmail(t *testing.T) {
	assert.True(t, NewRegistry([]string{"email", "github"}).HasEmail())
	assert.False(t, NewRegistry([]string{"github"}).HasEmail())
}

func TestFederated(t *testing.T) {
	r := NewRegistry([]string{"email", "github", "gitlab"})
	federated := r.Federated()
	assert.Len(t, federated, 2)
	assert.Equal(t, "github", federated[0].Name)
	assert.Equal(t, "gitlab", federated[1].Name)

	// Email backend carries no begin URL
	assert.Equal(t, []string{"email", "github", "gitlab"}, r.Names())
}
