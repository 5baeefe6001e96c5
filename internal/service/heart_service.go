package service

import (
	"context"

	"gaethering/internal/repository"
)

type HeartService struct {
	heartRepo repository.HeartRepository
	postRepo  repository.PostRepository
}

// HeartResponse reports the post's heart state after a toggle.
type HeartResponse struct {
	PostID   uint  `json:"postId"`
	HeartCnt int64 `json:"heartCnt"`
	Hearted  bool  `json:"hearted"`
}

func NewHeartService(heartRepo repository.HeartRepository, postRepo repository.PostRepository) *HeartService {
	return &HeartService{
		heartRepo: heartRepo,
		postRepo:  postRepo,
	}
}

// Toggle hearts the post if the member has not hearted it, and removes the
// heart otherwise. Toggling twice always lands back at the starting state.
func (s *HeartService) Toggle(ctx context.Context, memberID, postID uint) (*HeartResponse, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	hearted, err := s.heartRepo.Exists(ctx, memberID, postID)
	if err != nil {
		return nil, err
	}
	if hearted {
		if err := s.heartRepo.Remove(ctx, memberID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.heartRepo.Insert(ctx, memberID, postID); err != nil {
			return nil, err
		}
	}

	count, err := s.heartRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &HeartResponse{
		PostID:   postID,
		HeartCnt: count,
		Hearted:  !hearted,
	}, nil
}
