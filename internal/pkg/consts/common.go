package consts

const (
	DefaultAvatarKey = "default_avatar.png"
	DefaultCoverKey  = "default_cover.png"
)

const (
	// MaxOfferAmount 报价上限（分），防止明显的误输入
	MaxOfferAmount int64 = 100_000_000_00
)

const (
	MaxMessageLength = 2000
)
