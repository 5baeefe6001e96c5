package service

import (
	"context"
	"testing"

	"gaethering/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHeartRepo tracks hearts in memory so toggling can be exercised end to end.
type memoryHeartRepo struct {
	hearts map[[2]uint]bool
}

func newMemoryHeartRepo() *memoryHeartRepo {
	return &memoryHeartRepo{hearts: make(map[[2]uint]bool)}
}

func (r *memoryHeartRepo) Exists(_ context.Context, memberID, postID uint) (bool, error) {
	return r.hearts[[2]uint{memberID, postID}], nil
}

func (r *memoryHeartRepo) Insert(_ context.Context, memberID, postID uint) error {
	r.hearts[[2]uint{memberID, postID}] = true
	return nil
}

func (r *memoryHeartRepo) Remove(_ context.Context, memberID, postID uint) error {
	delete(r.hearts, [2]uint{memberID, postID})
	return nil
}

func (r *memoryHeartRepo) CountByPost(_ context.Context, postID uint) (int64, error) {
	var n int64
	for key := range r.hearts {
		if key[1] == postID {
			n++
		}
	}
	return n, nil
}

func TestHeartService_Toggle(t *testing.T) {
	t.Parallel()

	heartRepo := newMemoryHeartRepo()
	svc := NewHeartService(heartRepo, noopPostRepo())
	ctx := context.Background()

	// first toggle hearts the post
	result, err := svc.Toggle(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, result.Hearted)
	assert.EqualValues(t, 1, result.HeartCnt)

	// second toggle removes it
	result, err = svc.Toggle(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, result.Hearted)
	assert.EqualValues(t, 0, result.HeartCnt)

	// different members heart independently
	_, err = svc.Toggle(ctx, 1, 3)
	require.NoError(t, err)
	result, err = svc.Toggle(ctx, 2, 3)
	require.NoError(t, err)
	assert.True(t, result.Hearted)
	assert.EqualValues(t, 2, result.HeartCnt)
}

func TestHeartService_Toggle_Idempotence(t *testing.T) {
	t.Parallel()

	heartRepo := newMemoryHeartRepo()
	svc := NewHeartService(heartRepo, noopPostRepo())
	ctx := context.Background()

	// an even number of toggles always lands back at the starting state
	for i := 0; i < 6; i++ {
		_, err := svc.Toggle(ctx, 1, 3)
		require.NoError(t, err)
	}
	count, err := heartRepo.CountByPost(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestHeartService_Toggle_UnknownPost(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return nil, models.NewPostNotFoundError()
	}
	svc := NewHeartService(newMemoryHeartRepo(), postRepo)

	_, err := svc.Toggle(context.Background(), 1, 99)
	assertAppErrorCode(t, err, models.CodePostNotFound)
}
