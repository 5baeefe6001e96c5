package seed

import (
	"fmt"
	"log"

	"gaethering/internal/models"

	"gorm.io/gorm"
)

// Demo populates the database with a small community: members, posts across
// every category, comments and hearts. Categories must already be seeded.
func Demo(db *gorm.DB, opts SeedOptions, memberCount, postsPerCategory int) error {
	if memberCount <= 0 {
		memberCount = 10
	}
	if postsPerCategory <= 0 {
		postsPerCategory = 15
	}

	factory := NewFactory(db, opts)

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories found; run migrations first")
	}

	members := make([]*models.Member, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		member, err := factory.CreateMember()
		if err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
		members = append(members, member)
	}
	log.Printf("created %d members", len(members))

	var allPosts []*models.Post
	for _, category := range categories {
		for i := 0; i < postsPerCategory; i++ {
			author := members[factory.rng.Intn(len(members))]
			post, err := factory.CreatePost(author, category.ID)
			if err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			if factory.rng.Intn(3) == 0 {
				if _, err := factory.CreatePostImage(post, true); err != nil {
					return fmt.Errorf("failed to create post image: %w", err)
				}
			}
			allPosts = append(allPosts, post)
		}
	}
	log.Printf("created %d posts across %d categories", len(allPosts), len(categories))

	commentCount := 0
	heartCount := 0
	for _, post := range allPosts {
		for i := factory.rng.Intn(6); i > 0; i-- {
			commenter := members[factory.rng.Intn(len(members))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("failed to create comment: %w", err)
			}
			commentCount++
		}
		for _, member := range members {
			if factory.rng.Intn(4) == 0 {
				if err := factory.CreateHeart(member, post); err != nil {
					return fmt.Errorf("failed to create heart: %w", err)
				}
				heartCount++
			}
		}
	}
	log.Printf("created %d comments and %d hearts", commentCount, heartCount)

	return nil
}
