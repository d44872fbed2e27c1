package user

import (
	"time"
)

// User 管理员账号实体
// 设计说明:
// 1. 书评俱乐部的写操作(增删改、审核、上传封面)需要管理员登录,
//    读操作全部公开
// 2. Password存储bcrypt哈希,永远不以明文出现在实体之外
type User struct {
	ID        uint
	Email     string // 登录邮箱(唯一)
	Password  string // bcrypt哈希
	Nickname  string // 显示名称
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建管理员账号(工厂方法,password已是bcrypt哈希)
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now().UTC()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
