package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResolver_Lookup(t *testing.T) {
	var results []string
	r := NewResolver(NewStaticVendorRepository(CommonOUIs), WithObserver(func(res string) {
		results = append(results, res)
	}))

	assert.Equal(t, "Apple, Inc.", r.Lookup("f0:99:bf:01:02:03"))
	assert.Equal(t, "", r.Lookup("12:34:56:78:9a:bc"))
	assert.Equal(t, "", r.Lookup("10:34:56:78:9a:bc"))
	assert.Equal(t, "", r.Lookup("ff:ff:ff:ff:ff:ff"))
	assert.Equal(t, "", r.Lookup("garbage"))

	assert.Equal(t, []string{LookupHit, LookupRandomized, LookupMiss, LookupMiss, LookupInvalid}, results)
}

func TestResolver_RepositoryErrorIsMiss(t *testing.T) {
	repo := new(MockVendorRepository)
	repo.On("LookupVendor", mock.Anything, mock.Anything).Return("", errors.New("boom"))

	var got string
	r := NewResolver(repo, WithObserver(func(res string) { got = res }))
	assert.Equal(t, "", r.Lookup("f0:99:bf:01:02:03"))
	assert.Equal(t, LookupError, got)
}

func TestResolver_LookupIsBounded(t *testing.T) {
	repo := new(MockVendorRepository)
	repo.On("LookupVendor", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	})

	r := NewResolver(repo)
	assert.Equal(t, "", r.Lookup("f0:99:bf:01:02:03"))
	repo.AssertExpectations(t)
}
