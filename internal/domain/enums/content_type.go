package enums

type ContentType string

const (
	ContentTypePost    ContentType = "post"
	ContentTypeComment ContentType = "comment"
)

func (t ContentType) Valid() bool {
	return t == ContentTypePost || t == ContentTypeComment
}
