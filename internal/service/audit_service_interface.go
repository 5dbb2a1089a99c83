package service

import (
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/merkleutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/audit"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
)

// AuditServiceInterface 定义了审计账本服务的接口：
// 接收证据、按批次聚合并计算 Merkle 承诺、产生锚定回执。
type AuditServiceInterface interface {
	// SubmitEvidence 将一条证据加入待聚合队列。先进先出受理，绝不阻塞。
	SubmitEvidence(record *evidence.EvidenceRecord) error

	// FlushBatch 原子地取走当前队列的全部证据聚合为一个批次并锚定。
	// 队列为空时不产生回执、不改变状态（返回 nil, nil）。
	//
	// 返回：
	//   批次回执（空批次时为 nil）
	FlushBatch() (*audit.AuditBatchReceipt, error)

	// LatestReceipt 返回最近一次产生的回执；从未锚定过批次时返回 nil。
	LatestReceipt() *audit.AuditBatchReceipt

	// GetReceipt 返回指定批次 ID 的回执。不存在时返回 `errorcode.ErrorNotFound`。
	GetReceipt(batchID string) (*audit.AuditBatchReceipt, error)

	// GetBatchIDByEvidence 返回包含指定证据的批次 ID。该证据尚未被任何批次锚定时 ok 为 false。
	GetBatchIDByEvidence(evidenceID string) (batchID string, ok bool)

	// ListBatchEvidence 返回指定批次内的证据（按入批次序）。
	ListBatchEvidence(batchID string) ([]*evidence.EvidenceRecord, error)

	// BuildMembershipProof 为指定批次内的指定证据构造 Merkle 成员证明。
	BuildMembershipProof(batchID string, evidenceID string) ([]merkleutils.ProofStep, error)
}
