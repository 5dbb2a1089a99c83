package appinit

import (
	"gitee.com/czyczk/wrapdek-sharing/internal/models/sqlmodel"
	errors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// SetupLocalDB 连接本地 MySQL 数据库并确保审计痕迹与资源镜像所需的表存在。
//
// 参数：
//   数据库 DSN
//
// 返回：
//   数据库连接
func SetupLocalDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "无法连接本地数据库")
	}

	if err := db.AutoMigrate(&sqlmodel.Evidence{}, &sqlmodel.AuditReceipt{}, &sqlmodel.Resource{}); err != nil {
		return nil, errors.Wrap(err, "无法初始化本地数据库表结构")
	}

	log.Infoln("本地数据库已连接。")
	return db, nil
}
