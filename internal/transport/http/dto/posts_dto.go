package dto

type CreatePostRequest struct {
	Text     string  `json:"text"`
	ImageKey *string `json:"image_key,omitempty"`
}

type CreatePostResponse struct {
	PostID int64  `json:"post_id"`
	Status string `json:"status"`
}

type DeleteResponse struct {
	OK bool `json:"ok"`
}
