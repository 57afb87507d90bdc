package areas

import "time"

// Area is an organizational unit that request tickets are routed to.
// OwnerSub is the designated resolver: exactly one identity per area. Areas
// with an empty owner slot cannot resolve tickets until one is assigned.
type Area struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	OwnerSub  string    `bson:"ownerSub" json:"ownerSub"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
