package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/reviewclub/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	// 时间戳统一使用UTC（配合DSN的loc=UTC）
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
// 导出给测试使用（测试用SQLite内存库建表）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&CategoryModel{},
		&ReviewerModel{},
		&BookModel{},
		&ReviewModel{},
	)
}

// UserModel GORM管理员模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// CategoryModel GORM分类模型
// 设计说明:
// 1. Version字段实现乐观锁,UPDATE时带WHERE version=?条件
// 2. 图书数量是派生值,读取时COUNT计算,不在此落库
type CategoryModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:25;not null;comment:分类名称"`
	Version   int            `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (CategoryModel) TableName() string {
	return "categories"
}

// BookModel GORM图书模型
// 设计说明:
// 1. CategoryID是必填引用,带索引支持按分类查询与级联删除
// 2. PicturePath保存封面资产的存储键("{id}{ext}"),空串表示无封面
// 3. 不声明数据库外键约束:引用完整性由领域服务在写入前校验,
//    级联删除由服务在事务中显式编排
type BookModel struct {
	ID               uint           `gorm:"primaryKey"`
	Name             string         `gorm:"index:idx_search;size:50;not null;comment:书名"`
	Author           string         `gorm:"index:idx_search;size:50;not null;comment:作者"`
	CategoryID       uint           `gorm:"index;not null;comment:所属分类ID"`
	PicturePath      string         `gorm:"size:255;comment:封面资产存储键"`
	HasPicture       bool           `gorm:"default:false;comment:是否已有封面"`
	IsBookOfTheMonth bool           `gorm:"default:false;comment:本月之书标记"`
	Version          int            `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt        time.Time      `gorm:"comment:创建时间"`
	UpdatedAt        time.Time      `gorm:"comment:更新时间"`
	DeletedAt        gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewerModel GORM评论人模型
type ReviewerModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:100;not null;comment:姓名"`
	Email     string         `gorm:"size:100;not null;comment:邮箱"`
	Version   int            `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ReviewerModel) TableName() string {
	return "reviewers"
}

// ReviewModel GORM书评模型
// 设计说明:
// 1. BookID、ReviewerID带索引,支持按图书/评论人查询与级联删除
// 2. Date是业务时间戳(插入时打点,UTC),与CreatedAt分开存储
type ReviewModel struct {
	ID         uint           `gorm:"primaryKey"`
	Text       string         `gorm:"size:1000;not null;comment:书评内容"`
	Date       time.Time      `gorm:"not null;comment:书评时间戳(UTC)"`
	BookID     uint           `gorm:"index;not null;comment:被评图书ID"`
	ReviewerID uint           `gorm:"index;not null;comment:评论人ID"`
	IsApproved bool           `gorm:"default:false;comment:审核状态"`
	Version    int            `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt  time.Time      `gorm:"comment:创建时间"`
	UpdatedAt  time.Time      `gorm:"comment:更新时间"`
	DeletedAt  gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
