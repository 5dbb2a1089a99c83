package db

import (
	"gitee.com/czyczk/wrapdek-sharing/internal/models/sqlmodel"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/resource"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveResourceToLocalDB 将资源（不含 DEK）保存到指定的数据库中（若已存在则覆盖）。
func SaveResourceToLocalDB(res *resource.Resource, db *gorm.DB) error {
	resourceDB := sqlmodel.NewResourceFromModel(res)

	dbResult := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(resourceDB)
	if dbResult.Error != nil {
		return errors.Wrap(dbResult.Error, "无法将资源存入数据库")
	}

	return nil
}

// GetResourceFromLocalDB 从数据库中读取指定 ID 的资源。
func GetResourceFromLocalDB(id string, db *gorm.DB) (*sqlmodel.Resource, error) {
	var resourceDB sqlmodel.Resource
	dbResult := db.Where("id = ?", id).Take(&resourceDB)
	if dbResult.Error != nil {
		if errors.Cause(dbResult.Error) == gorm.ErrRecordNotFound {
			return nil, errorcode.ErrorNotFound
		} else {
			return nil, errors.Wrap(dbResult.Error, "无法从数据库中获取资源")
		}
	}

	return &resourceDB, nil
}
