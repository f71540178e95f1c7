package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），调用方按代码分支而非字符串匹配
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Feature 错误：DATA_ERROR, NOT_FOUND
//   - Scorer 错误：INSUFFICIENT_DATA
//   - 配置错误：INVALID_CONFIG（启动期 fail-fast，不在请求期出现）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INSUFFICIENT_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "recall"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"         // 请求的物品/用户不存在，直接上抛
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
	ErrorCodeDataError        = "DATA_ERROR"        // 物品特征缺失/不可用，局部吸收（零向量兜底）
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA" // 行为数据不足，由 Blender 降级为 content-only
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"    // 可调参数非法，构造期直接失败
	ErrorCodeInternalError    = "INTERNAL_ERROR"    // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征索引模块
	ModuleRecall  = "recall"  // 打分/召回模块
	ModuleRank    = "rank"    // 混合排序模块
	ModuleConfig  = "config"  // 配置模块
	ModuleFeast   = "feast"   // Feast 特征源模块
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsDataError 检查错误是否为 DATA_ERROR
func IsDataError(err error) bool {
	return hasCode(err, ErrorCodeDataError)
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA。
// Blender 依赖此函数识别可降级错误：命中时权重强制切到 content-only，请求不失败。
func IsInsufficientData(err error) bool {
	return hasCode(err, ErrorCodeInsufficientData)
}

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrorCodeInvalidConfig)
}
