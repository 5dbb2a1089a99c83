package sqlmodel

import (
	"time"

	"gitee.com/czyczk/wrapdek-sharing/pkg/models/audit"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/resource"
)

// Evidence 为 evidences 表的 gorm 模型，是审计账本内证据的本地持久化镜像。
// 镜像只增不改；`BatchID` 在证据所属批次完成锚定时一并写入。
type Evidence struct {
	ID                     string    `gorm:"column:id;primaryKey"`
	RequestID              string    `gorm:"column:request_id"`
	RequesterDid           string    `gorm:"column:requester_did"`
	AttestationSummaryHash string    `gorm:"column:attestation_summary_hash"`
	DecisionResult         string    `gorm:"column:decision_result"`
	Timestamp              time.Time `gorm:"column:timestamp"`
	IssuerSignature        []byte    `gorm:"column:issuer_signature"`
	SessionSignature       []byte    `gorm:"column:session_signature"`
	BatchID                string    `gorm:"column:batch_id"`
}

func (Evidence) TableName() string {
	return "evidences"
}

// NewEvidenceFromModel 由 `evidence.EvidenceRecord` 对象生成 gorm 模型。
func NewEvidenceFromModel(record *evidence.EvidenceRecord, batchID string) *Evidence {
	return &Evidence{
		ID:                     record.EvidenceID,
		RequestID:              record.RequestID,
		RequesterDid:           record.RequesterDid,
		AttestationSummaryHash: record.AttestationSummaryHash,
		DecisionResult:         record.DecisionResult,
		Timestamp:              record.Timestamp,
		IssuerSignature:        record.IssuerSignature,
		SessionSignature:       record.SessionSignature,
		BatchID:                batchID,
	}
}

// AuditReceipt 为 audit_receipts 表的 gorm 模型，是批次回执的本地持久化镜像。
type AuditReceipt struct {
	BatchID       string    `gorm:"column:batch_id;primaryKey"`
	Sequence      uint64    `gorm:"column:sequence"`
	MerkleRoot    string    `gorm:"column:merkle_root"`
	AnchorTxID    string    `gorm:"column:anchor_tx_id"`
	Confirmations int       `gorm:"column:confirmations"`
	Timestamp     time.Time `gorm:"column:timestamp"`
	Signature     []byte    `gorm:"column:signature"`
}

func (AuditReceipt) TableName() string {
	return "audit_receipts"
}

// NewAuditReceiptFromModel 由 `audit.AuditBatchReceipt` 对象生成 gorm 模型。
func NewAuditReceiptFromModel(receipt *audit.AuditBatchReceipt) *AuditReceipt {
	return &AuditReceipt{
		BatchID:       receipt.BatchID,
		Sequence:      receipt.Sequence,
		MerkleRoot:    receipt.MerkleRoot,
		AnchorTxID:    receipt.AnchorTxID,
		Confirmations: receipt.Confirmations,
		Timestamp:     receipt.Timestamp,
		Signature:     receipt.Signature,
	}
}

// Resource 为 resources 表的 gorm 模型。密文可另存于 IPFS，此时 `Ciphertext` 可为空而以 `IpfsCid` 引用。
// DEK 不持久化：密钥材料不出资源存储的内存边界。
type Resource struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Fingerprint string    `gorm:"column:fingerprint"`
	IpfsCid     string    `gorm:"column:ipfs_cid"`
	Ciphertext  []byte    `gorm:"column:ciphertext;type:longblob"`
	TimeCreated time.Time `gorm:"column:time_created"`
}

func (Resource) TableName() string {
	return "resources"
}

// NewResourceFromModel 由 `resource.Resource` 对象生成 gorm 模型。
func NewResourceFromModel(res *resource.Resource) *Resource {
	ciphertext := res.Ciphertext
	if res.IpfsCid != "" {
		// 密文已由 IPFS 托管，本地不再冗余存储
		ciphertext = nil
	}

	return &Resource{
		ID:          res.ResourceID,
		Fingerprint: res.Fingerprint,
		IpfsCid:     res.IpfsCid,
		Ciphertext:  ciphertext,
		TimeCreated: res.Timestamp,
	}
}
