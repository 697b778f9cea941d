package models

import "time"

// Account activity event types recorded in MongoDB.
const (
	ActivityPassword    = "password"
	ActivityReset       = "reset"
	ActivityConnect     = "connect"
	ActivityLogin       = "login"
	ActivityFailedLogin = "failed-login"
	ActivityRemoval     = "removal"
	ActivityTranslation = "translation"
)

// ActivityEvent is one entry of a user's account activity trail.
type ActivityEvent struct {
	Username    string    `bson:"username" json:"username"`
	Activity    string    `bson:"activity" json:"activity"`
	ProjectSlug string    `bson:"project_slug,omitempty" json:"project_slug,omitempty"`
	IPAddress   string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent   string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}
