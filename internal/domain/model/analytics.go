package model

// SiteAnalytics holds the aggregate counters shown on the admin dashboard.
type SiteAnalytics struct {
	PublishedArticles int `json:"published_articles" db:"published_articles"`
	DraftArticles     int `json:"draft_articles"     db:"draft_articles"`
	Categories        int `json:"categories"         db:"categories"`
	Subscribers       int `json:"subscribers"        db:"subscribers"`
	Users             int `json:"users"              db:"users"`
	TotalViews        int `json:"total_views"        db:"total_views"`
	TotalLikes        int `json:"total_likes"        db:"total_likes"`
}

// ArticleEngagement reports the per-article counters returned alongside a
// public article read.
type ArticleEngagement struct {
	ArticleID string `json:"article_id" db:"article_id"`
	Views     int    `json:"views"      db:"views"`
	Likes     int    `json:"likes"      db:"likes"`
	// Liked reports whether the requesting user has liked the article; false
	// for anonymous readers.
	Liked bool `json:"liked" db:"liked"`
}
