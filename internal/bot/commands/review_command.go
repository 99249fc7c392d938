package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ReviewService is the part of the menu service the review commands use
type ReviewService interface {
	SubmitReview(ctx context.Context, actor *models.User, foodID string, rating int, comment string) (*models.Review, error)
	Reviews(ctx context.Context, foodID string) ([]models.Review, error)
	DeleteReview(ctx context.Context, actor *models.User, foodID, reviewID string) error
}

const maxListedReviews = 10

// ReviewCommand handles ratings and comments
type ReviewCommand struct {
	log     *zap.Logger
	reviews ReviewService
	users   UserResolver
}

// NewReviewCommand creates a new review command handler
func NewReviewCommand(log *zap.Logger, reviews ReviewService, users UserResolver) *ReviewCommand {
	return &ReviewCommand{
		log:     log.Named("review-command"),
		reviews: reviews,
		users:   users,
	}
}

// Register registers the review commands
func (c *ReviewCommand) Register(r *Registry) {
	r.Register("rate", commandFunc{"rate <foodId> <1-5> [comment] - rate a food", c.handleRate})
	r.Register("reviews", commandFunc{"reviews <foodId> - show the latest reviews", c.handleReviews})
	r.Register("review-delete", commandFunc{"review-delete <foodId> <reviewId> - delete your review", c.handleDelete})
}

func (c *ReviewCommand) handleRate(ctx *Context) error {
	if len(ctx.Args) < 2 {
		return usageError("rate <foodId> <1-5> [comment]")
	}

	rating, err := strconv.Atoi(ctx.Args[1])
	if err != nil {
		return usageError("rate <foodId> <1-5> [comment]")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	review, err := c.reviews.SubmitReview(ctx.Ctx, user, ctx.Args[0], rating, strings.Join(ctx.Args[2:], " "))
	if err != nil {
		return err
	}

	c.log.Info("Review submitted",
		zap.String("review_id", review.ID),
		zap.String("food_id", review.FoodID),
		zap.Int("rating", review.Rating))
	ctx.Reply("Thanks! You rated `%s` %s", review.FoodID, stars(review.Rating))
	return nil
}

func (c *ReviewCommand) handleReviews(ctx *Context) error {
	if len(ctx.Args) != 1 {
		return usageError("reviews <foodId>")
	}

	reviews, err := c.reviews.Reviews(ctx.Ctx, ctx.Args[0])
	if err != nil {
		return err
	}

	fields := make([]*discordgo.MessageEmbedField, 0, maxListedReviews)
	for i, review := range reviews {
		if i == maxListedReviews {
			break
		}
		value := review.Comment
		if value == "" {
			value = "-"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s · %s · `%s`", stars(review.Rating), review.CreatedAt.Format("2006-01-02"), review.ID),
			Value: value,
		})
	}

	description := fmt.Sprintf("Average %.1f ★ from %d reviews", models.AverageRating(reviews), len(reviews))
	if len(reviews) == 0 {
		description = "No reviews yet."
	}

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       "Reviews",
		Description: description,
		Color:       0xFFD700, // Gold
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *ReviewCommand) handleDelete(ctx *Context) error {
	if len(ctx.Args) != 2 {
		return usageError("review-delete <foodId> <reviewId>")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	if err := c.reviews.DeleteReview(ctx.Ctx, user, ctx.Args[0], ctx.Args[1]); err != nil {
		return err
	}
	ctx.Reply("Review deleted.")
	return nil
}

func stars(rating int) string {
	if rating < models.MinRating || rating > models.MaxRating {
		return strconv.Itoa(rating)
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", models.MaxRating-rating)
}
