package db

import (
	"gitee.com/czyczk/wrapdek-sharing/internal/models/sqlmodel"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/audit"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveCommittedBatchToLocalDB 将一个已锚定批次的回执与证据镜像存入指定的数据库。
// 单个交易内完成，保证批次镜像的原子性。
func SaveCommittedBatchToLocalDB(receipt *audit.AuditBatchReceipt, batch []*evidence.EvidenceRecord, db *gorm.DB) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		receiptDB := sqlmodel.NewAuditReceiptFromModel(receipt)

		dbResult := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			DoNothing: true,
		}).Create(receiptDB)
		if dbResult.Error != nil {
			return errors.Wrap(dbResult.Error, "无法将批次回执存入数据库")
		}

		for _, record := range batch {
			evidenceDB := sqlmodel.NewEvidenceFromModel(record, receipt.BatchID)
			dbResult = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).Create(evidenceDB)
			if dbResult.Error != nil {
				return errors.Wrap(dbResult.Error, "无法将证据镜像存入数据库")
			}
		}

		return nil
	})

	return err
}

// GetAuditReceiptFromLocalDB 从数据库中读取指定批次 ID 的回执镜像。
func GetAuditReceiptFromLocalDB(batchID string, db *gorm.DB) (*sqlmodel.AuditReceipt, error) {
	var receiptDB sqlmodel.AuditReceipt
	dbResult := db.Where("batch_id = ?", batchID).Take(&receiptDB)
	if dbResult.Error != nil {
		if errors.Cause(dbResult.Error) == gorm.ErrRecordNotFound {
			return nil, errorcode.ErrorNotFound
		} else {
			return nil, errors.Wrap(dbResult.Error, "无法从数据库中获取批次回执")
		}
	}

	return &receiptDB, nil
}

// GetEvidenceListByBatchFromLocalDB 从数据库中读取指定批次内的证据镜像。
func GetEvidenceListByBatchFromLocalDB(batchID string, db *gorm.DB) ([]*sqlmodel.Evidence, error) {
	var evidenceListDB []*sqlmodel.Evidence
	dbResult := db.Where("batch_id = ?", batchID).Order("timestamp").Find(&evidenceListDB)
	if dbResult.Error != nil {
		return nil, errors.Wrap(dbResult.Error, "无法从数据库中获取批次证据")
	}

	return evidenceListDB, nil
}
