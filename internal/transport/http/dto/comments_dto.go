package dto

type CreateCommentRequest struct {
	Text string `json:"text"`
}

type CreateCommentResponse struct {
	CommentID int64  `json:"comment_id"`
	Status    string `json:"status"`
}
