package config

// Engine limits. These are part of the observable behavior of the API and
// are not configurable.
const (
	// MaxRecommendations caps a recommendation result after credit selection.
	MaxRecommendations = 50

	// DefaultTargetCredits is used when a recommendation request omits target_credits.
	DefaultTargetCredits = 20

	// DefaultCategory is used when a recommendation request omits category.
	DefaultCategory = "通識"

	// DefaultSearchLimit is the default limit for /api/courses/search.
	DefaultSearchLimit = 50

	// DefaultHistoryLimit is the default limit for /api/courses/history.
	DefaultHistoryLimit = 100

	// TopDepartments is how many offering classes the statistics list.
	TopDepartments = 10

	// DefaultMaxQueryLimit bounds the limit query parameter.
	DefaultMaxQueryLimit = 1000
)

// User-facing messages returned in the "detail" field of error responses.
const (
	MsgNoDataset        = "沒有處理過的課程數據"
	MsgCourseNotFound   = "找不到課程"
	MsgListFailed       = "獲取課程列表失敗"
	MsgSearchFailed     = "搜索失敗"
	MsgByClassFailed    = "獲取班級課程失敗"
	MsgRecommendFailed  = "推薦課程失敗"
	MsgHistoryFailed    = "獲取歷年資料失敗"
	MsgStatsFailed      = "獲取統計失敗"
	MsgDetailFailed     = "獲取詳情失敗"
	MsgDepartmentFailed = "獲取系所列表失敗"
)
