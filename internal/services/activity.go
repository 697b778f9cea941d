package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/glossahub/glossahub-backend/internal/database"
	"github.com/glossahub/glossahub-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityCollection is the MongoDB collection holding the account activity trail.
// The trail is optional: without a MongoDB connection events are dropped and
// listings come back empty.
const ActivityCollection = "account_activity"

// Mail bodies for security-sensitive events, keyed by activity type. Events
// not listed here are recorded but not mailed.
var activityMailBodies = map[string]string{
	models.ActivityPassword: "Your password has been changed.\n\nIf you did not make this change, reset your password immediately.",
	models.ActivityReset:    "A password reset was requested for your account.",
	models.ActivityConnect:  "A request was made to connect this email address to an account.",
	models.ActivityRemoval:  "Your account has been removed.",
}

// EnsureActivityIndexes creates the indexes backing per-user activity listings.
func EnsureActivityIndexes(ctx context.Context) error {
	if database.DB == nil {
		return nil
	}
	coll := database.DB.Collection(ActivityCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	})
	return err
}

// RecordActivity appends one event to the activity trail.
func RecordActivity(ctx context.Context, event models.ActivityEvent) error {
	if database.DB == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := database.DB.Collection(ActivityCollection).InsertOne(ctx, event)
	return err
}

// LastActivity returns the user's most recent activity entries, newest first.
func LastActivity(ctx context.Context, username string, limit int) ([]models.ActivityEvent, error) {
	if database.DB == nil {
		return []models.ActivityEvent{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := database.DB.Collection(ActivityCollection).Find(ctx,
		bson.M{"username": username}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]models.ActivityEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ActivityProjects returns the distinct projects a user has contributed to.
func ActivityProjects(ctx context.Context, username string) ([]string, error) {
	if database.DB == nil {
		return []string{}, nil
	}
	values, err := database.DB.Collection(ActivityCollection).Distinct(ctx,
		"project_slug", bson.M{
			"username":     username,
			"project_slug": bson.M{"$ne": ""},
		})
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			slugs = append(slugs, s)
		}
	}
	return slugs, nil
}

// NotifyAccountActivity records a security event and, for sensitive events,
// mails the account address. Failures are logged, never surfaced: the
// triggering request must not fail because its audit trail did.
func NotifyAccountActivity(user *models.User, ipAddress, userAgent, activity string) {
	err := RecordActivity(context.Background(), models.ActivityEvent{
		Username:  user.Username,
		Activity:  activity,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		log.Printf("WARNING: failed to record %s activity for %s: %v", activity, user.Username, err)
	}

	body, sensitive := activityMailBodies[activity]
	if !sensitive || user.Email == "" || Mail == nil {
		return
	}

	subject := fmt.Sprintf("Activity on your account: %s", activity)
	if err := Mail.Send(subject, body, []string{user.Email}, ""); err != nil {
		log.Printf("WARNING: failed to mail %s notification to %s: %v", activity, user.Username, err)
	}
}
