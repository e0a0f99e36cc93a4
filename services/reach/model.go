package reach

import "time"

// ContentView is one impression of a piece of content by a viewer.
type ContentView struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID string    `gorm:"column:content_id;type:varchar(32);not null;index" json:"content_id"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(32);not null" json:"author_id"`
	ViewerID  string    `gorm:"column:viewer_id;type:varchar(32);not null;index:idx_view_window,priority:2" json:"viewer_id"`
	SeenAt    time.Time `gorm:"column:seen_at;not null;index:idx_view_window,priority:1" json:"seen_at"`
}

func (ContentView) TableName() string {
	return "content_views"
}

// Views is the number of impressions attributed to one user.
type Views struct {
	User  string `gorm:"column:user_id" json:"user"`
	Count int64  `gorm:"column:views" json:"views"`
}
