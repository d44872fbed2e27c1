// Package validator 提供集中式的字段校验
//
// 设计说明：
// 1. 各领域服务的Add/Update操作统一通过Check收集校验违规，
//    避免每个操作重复手写空串/长度判断
// 2. 违规信息是有序的、可直接展示的消息列表，
//    与result.Result的Messages字段对接
// 3. 校验只做声明式约束（必填、长度、邮箱格式、正整数ID），
//    跨实体的引用校验属于领域服务职责，不在这里
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailRegex 简化的邮箱格式校验（完整校验交给邮件发送环节）
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Check 一次校验的违规收集器
// 使用示例：
//
//	v := validator.New()
//	v.Required("Book name", name)
//	v.MaxLen("Book name", name, 50)
//	if !v.Valid() {
//	    return result.Error(v.Violations()...)
//	}
type Check struct {
	violations []string
}

// New 创建校验收集器
func New() *Check {
	return &Check{}
}

// Required 必填字段：空串或纯空白视为缺失
func (c *Check) Required(field, value string) *Check {
	if strings.TrimSpace(value) == "" {
		c.violations = append(c.violations, fmt.Sprintf("%s cannot be empty", field))
	}
	return c
}

// MaxLen 最大长度（按字符数，不是字节数）
func (c *Check) MaxLen(field, value string, max int) *Check {
	if utf8.RuneCountInString(value) > max {
		c.violations = append(c.violations, fmt.Sprintf("%s cannot exceed %d characters", field, max))
	}
	return c
}

// Email 邮箱格式（空串由Required负责，这里跳过）
func (c *Check) Email(field, value string) *Check {
	if strings.TrimSpace(value) == "" {
		return c
	}
	if !emailRegex.MatchString(value) {
		c.violations = append(c.violations, fmt.Sprintf("%s is not a valid email address", field))
	}
	return c
}

// PositiveID 引用ID必须为正整数
func (c *Check) PositiveID(field string, id int) *Check {
	if id <= 0 {
		c.violations = append(c.violations, fmt.Sprintf("%s must be a positive id", field))
	}
	return c
}

// Valid 是否全部通过
func (c *Check) Valid() bool {
	return len(c.violations) == 0
}

// Violations 返回有序的违规消息列表
func (c *Check) Violations() []string {
	return c.violations
}
