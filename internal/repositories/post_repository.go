package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

// FeedFilter narrows a feed query. Zero values mean "no filter".
type FeedFilter struct {
	AuthorID      uint
	Hashtag       string
	FollowingOnly bool
	FollowingIDs  []uint // authors the viewer follows; also feeds the visibility check
	ViewerID      uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetFeed(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, int64, error)
	GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	SetPinned(ctx context.Context, id string, pinned bool) error
	IncrementLikesCount(ctx context.Context, postID string) error
	DecrementLikesCount(ctx context.Context, postID string) error
	IncrementCommentsCount(ctx context.Context, postID string) error
	AddToCommentsCount(ctx context.Context, postID string, delta int64) error
	IncrementSharesCount(ctx context.Context, postID string) error
	IncrementViewsCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("post")
		}
		return nil, err
	}
	return &post, nil
}

// feedQuery builds the visibility-aware filter document for a feed read.
// Only published, approved posts qualify; private posts are visible to their
// author alone, followers-only posts to the viewer's followed authors.
func feedQuery(filter FeedFilter) bson.M {
	visibility := []bson.M{
		{"visibility": models.VisibilityPublic},
	}
	if filter.ViewerID > 0 {
		visibility = append(visibility, bson.M{"user_id": filter.ViewerID})
		if len(filter.FollowingIDs) > 0 {
			visibility = append(visibility, bson.M{
				"visibility": models.VisibilityFollowers,
				"user_id":    bson.M{"$in": filter.FollowingIDs},
			})
		}
	}

	query := bson.M{
		"is_published":      true,
		"moderation_status": models.ModerationApproved,
		"$or":               visibility,
	}
	if filter.AuthorID > 0 {
		query["user_id"] = filter.AuthorID
	} else if filter.FollowingOnly {
		query["user_id"] = bson.M{"$in": filter.FollowingIDs}
	}
	if filter.Hashtag != "" {
		query["hashtags"] = filter.Hashtag
	}
	return query
}

// GetFeed retrieves a page of feed posts matching the filter, newest first,
// plus the total match count for pagination metadata.
func (r *MongoPostRepository) GetFeed(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, int64, error) {
	query := feedQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetPostsByUserID retrieves posts authored by a specific user, newest first
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates an existing post's mutable fields in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation("invalid post ID format")
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"content":    post.Content,
			"media_urls": post.MediaURLs,
			"media_type": post.MediaType,
			"visibility": post.Visibility,
			"hashtags":   post.Hashtags,
			"mentions":   post.Mentions,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post")
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation("invalid post ID format")
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("post")
	}
	return nil
}

// SetPinned toggles the pin flag on a post
func (r *MongoPostRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation("invalid post ID format")
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_pinned": pinned}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post")
	}
	return nil
}

func (r *MongoPostRepository) inc(ctx context.Context, postID, field string, delta int64, floorAtZero bool) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	query := bson.M{"_id": objID}
	if floorAtZero {
		// a decrement must never take the stored counter negative
		query[field] = bson.M{"$gt": 0}
	}
	_, err = r.collection.UpdateOne(ctx, query, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// IncrementLikesCount increments the denormalized likes counter of a post
func (r *MongoPostRepository) IncrementLikesCount(ctx context.Context, postID string) error {
	return r.inc(ctx, postID, "likes_count", 1, false)
}

// DecrementLikesCount decrements the likes counter, floored at zero
func (r *MongoPostRepository) DecrementLikesCount(ctx context.Context, postID string) error {
	return r.inc(ctx, postID, "likes_count", -1, true)
}

// IncrementCommentsCount increments the denormalized comments counter
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	return r.inc(ctx, postID, "comments_count", 1, false)
}

// AddToCommentsCount applies a (possibly negative) delta to the comments
// counter, used when a comment delete also removes its replies. The pipeline
// clamps the result at zero even when the delta overshoots.
func (r *MongoPostRepository) AddToCommentsCount(ctx context.Context, postID string, delta int64) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"comments_count": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$comments_count", delta}}}},
		}}},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, pipeline)
	return err
}

// IncrementSharesCount increments the shares counter
func (r *MongoPostRepository) IncrementSharesCount(ctx context.Context, postID string) error {
	return r.inc(ctx, postID, "shares_count", 1, false)
}

// IncrementViewsCount increments the views counter
func (r *MongoPostRepository) IncrementViewsCount(ctx context.Context, postID string) error {
	return r.inc(ctx, postID, "views_count", 1, false)
}
