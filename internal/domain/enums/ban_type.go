package enums

type BanType string

const (
	BanTypeShadow    BanType = "shadow"
	BanTypePermanent BanType = "permanent"
)
