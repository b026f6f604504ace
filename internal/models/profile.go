package models

// UserProfile is stored at users/{userId}. Weight mirrors the latest
// progress entry once one exists; InitialReferenceWeight caches the
// baseline progress is measured against.
type UserProfile struct {
	ID                     string   `bson:"-" json:"id"`
	Name                   string   `bson:"name" json:"name" validate:"required"`
	Email                  string   `bson:"email" json:"email" validate:"required,email"`
	Weight                 float64  `bson:"weight" json:"weight" validate:"gte=0"`
	Height                 float64  `bson:"height" json:"height" validate:"gte=0"`
	Age                    int      `bson:"age" json:"age" validate:"gte=0"`
	Gender                 string   `bson:"gender" json:"gender"`
	FitnessGoal            string   `bson:"fitnessGoal" json:"fitnessGoal"`
	InitialReferenceWeight *float64 `bson:"initialReferenceWeight,omitempty" json:"initialReferenceWeight,omitempty"`
}
