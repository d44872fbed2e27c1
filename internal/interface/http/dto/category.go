package dto

// 分类HTTP DTO
// 设计说明:
// 1. 业务规则校验(必填、长度)在领域服务里做,校验消息随Result返回,
//    DTO的binding只负责结构层面的解析
// 2. 读取模型(WithBookCount等)自带json tag,直接作为响应体

// AddCategoryRequest 创建分类请求
type AddCategoryRequest struct {
	Name string `json:"name" example:"Fiction"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name string `json:"name" example:"Science Fiction"`
}

// IDUri 路径参数:/:id
type IDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
