package result

// Package result 定义领域层统一的操作结果契约
//
// 设计说明：
// 1. 每个写操作（Add/Update/Delete/Approve/Upload）都返回*Result，
//    而不是裸error——调用方总能拿到结构化的结果
// 2. Status是带标签的结果枚举；CreatedID仅在Created时有意义
// 3. Messages是有序的人类可读诊断信息，NotFound/Error时展示给调用方

// Status 操作结果状态
type Status int

const (
	// StatusNotFound 按ID操作的目标实体不存在
	StatusNotFound Status = iota
	// StatusCreated 实体已创建（CreatedID有效）
	StatusCreated
	// StatusUpdated 实体已更新
	StatusUpdated
	// StatusDeleted 实体已删除
	StatusDeleted
	// StatusError 操作失败（校验失败、引用无法解析、存储异常等）
	StatusError
	// StatusSuccess 操作成功但不属于上述任何一种（如审核通过）
	StatusSuccess
)

// String 返回状态的可读名称
func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "NotFound"
	case StatusCreated:
		return "Created"
	case StatusUpdated:
		return "Updated"
	case StatusDeleted:
		return "Deleted"
	case StatusError:
		return "Error"
	case StatusSuccess:
		return "Success"
	default:
		return "Unknown"
	}
}

// Result 写操作的结构化结果
type Result struct {
	Status    Status   `json:"status"`
	CreatedID uint     `json:"created_id,omitempty"` // 仅Created时有效
	Messages  []string `json:"messages,omitempty"`   // 有序诊断信息
}

// OK 判断操作是否成功（Created/Updated/Deleted/Success）
func (r *Result) OK() bool {
	switch r.Status {
	case StatusCreated, StatusUpdated, StatusDeleted, StatusSuccess:
		return true
	default:
		return false
	}
}

// AddMessage 追加一条诊断信息（保持添加顺序）
func (r *Result) AddMessage(msg string) *Result {
	r.Messages = append(r.Messages, msg)
	return r
}

// =========================================
// 构造函数
// =========================================

// Created 创建成功
func Created(id uint) *Result {
	return &Result{Status: StatusCreated, CreatedID: id}
}

// Updated 更新成功
func Updated() *Result {
	return &Result{Status: StatusUpdated}
}

// Deleted 删除成功
func Deleted() *Result {
	return &Result{Status: StatusDeleted}
}

// Success 操作成功
func Success() *Result {
	return &Result{Status: StatusSuccess}
}

// NotFound 目标不存在
func NotFound(messages ...string) *Result {
	return &Result{Status: StatusNotFound, Messages: messages}
}

// Error 操作失败
func Error(messages ...string) *Result {
	return &Result{Status: StatusError, Messages: messages}
}
