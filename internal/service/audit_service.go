package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/db"
	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/idutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/merkleutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/timingutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/audit"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tjfoc/gmsm/sm2"
	"gorm.io/gorm"
)

// AuditService 实现了 `AuditServiceInterface` 接口，提供证据批次聚合与锚定回执服务。
//
// 待聚合队列为多生产者结构，任意多个调用方可并发提交；FlushBatch 一次只允许一个进行，
// 并发的第二个调用方会看到空的剩余队列（空批次是合法的 no-op，不是错误）。
// 回执列表只增不删，可安全并发读取。
type AuditService struct {
	PrivateKey *sm2.PrivateKey       // 审计账本签名私钥
	EventMgr   eventmgr.IEventManager // 回执事件发布目标。可为 nil。
	DB         *gorm.DB              // 审计痕迹的本地数据库镜像。可为 nil。

	queueMu sync.Mutex
	queue   []*evidence.EvidenceRecord

	flushMu sync.Mutex

	receiptsMu      sync.RWMutex
	receipts        []*audit.AuditBatchReceipt
	receiptsByBatch map[string]*audit.AuditBatchReceipt
	leavesByBatch   map[string][]string
	evidenceByBatch map[string][]*evidence.EvidenceRecord
	batchByEvidence map[string]string
}

func NewAuditService(privateKey *sm2.PrivateKey, eventManager eventmgr.IEventManager, localDB *gorm.DB) *AuditService {
	return &AuditService{
		PrivateKey:      privateKey,
		EventMgr:        eventManager,
		DB:              localDB,
		receiptsByBatch: make(map[string]*audit.AuditBatchReceipt),
		leavesByBatch:   make(map[string][]string),
		evidenceByBatch: make(map[string][]*evidence.EvidenceRecord),
		batchByEvidence: make(map[string]string),
	}
}

func (s *AuditService) SubmitEvidence(record *evidence.EvidenceRecord) error {
	if record == nil || record.EvidenceID == "" {
		return &ErrorBadRequest{errMsg: "证据及其 ID 不能为空"}
	}

	s.queueMu.Lock()
	s.queue = append(s.queue, record)
	s.queueMu.Unlock()

	log.Debugf("收到审计证据: %v", record.EvidenceID)
	return nil
}

func (s *AuditService) FlushBatch() (*audit.AuditBatchReceipt, error) {
	defer timingutils.GetDeferrableTimingLogger("聚合并锚定证据批次")()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	// 原子地取走当前队列全量，之后提交的证据进入下一批次
	s.queueMu.Lock()
	batch := s.queue
	s.queue = nil
	s.queueMu.Unlock()

	if len(batch) == 0 {
		log.Debugln("无待聚合证据，无需锚定")
		return nil, nil
	}

	// 以证据 ID 为叶子计算 Merkle 承诺
	leaves := make([]string, len(batch))
	for i, record := range batch {
		leaves[i] = record.EvidenceID
	}
	merkleRoot := merkleutils.ComputeMerkleRoot(leaves)

	batchID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return nil, err
	}

	anchorID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return nil, err
	}

	signature, err := cipherutils.SignBytes(s.PrivateKey, []byte(batchID+"|"+merkleRoot))
	if err != nil {
		return nil, errors.Wrap(err, "无法签署批次回执")
	}

	s.receiptsMu.Lock()
	receipt := &audit.AuditBatchReceipt{
		BatchID:       batchID,
		Sequence:      uint64(len(s.receipts) + 1),
		MerkleRoot:    merkleRoot,
		AnchorTxID:    "chainTx-" + anchorID,
		Confirmations: 1,
		Timestamp:     time.Now(),
		Signature:     signature,
	}
	s.receipts = append(s.receipts, receipt)
	s.receiptsByBatch[batchID] = receipt
	s.leavesByBatch[batchID] = leaves
	s.evidenceByBatch[batchID] = batch
	for _, record := range batch {
		s.batchByEvidence[record.EvidenceID] = batchID
	}
	s.receiptsMu.Unlock()

	log.Infof("已聚合批次并锚定。batchID=%v merkleRoot=%v 证据数=%v", batchID, merkleRoot, len(batch))

	// 数据库镜像为尽力而为：失败不阻断协议，只记录日志
	if s.DB != nil {
		if err := db.SaveCommittedBatchToLocalDB(receipt, batch, s.DB); err != nil {
			log.Errorf("无法将批次 %v 的审计痕迹存入本地数据库: %v", batchID, err)
		}
	}

	// 发布回执事件，触发协调器完成待定 wrap 的签发
	if s.EventMgr != nil {
		receiptBytes, err := json.Marshal(receipt)
		if err != nil {
			return nil, errors.Wrap(err, "无法序列化批次回执")
		}
		if err := s.EventMgr.Publish(eventmgr.EventIDReceiptCommitted, receiptBytes); err != nil {
			log.Errorf("无法发布批次回执事件: %v", err)
		}
	}

	receiptCopy := *receipt
	return &receiptCopy, nil
}

func (s *AuditService) LatestReceipt() *audit.AuditBatchReceipt {
	s.receiptsMu.RLock()
	defer s.receiptsMu.RUnlock()

	if len(s.receipts) == 0 {
		return nil
	}

	receiptCopy := *s.receipts[len(s.receipts)-1]
	return &receiptCopy
}

func (s *AuditService) GetReceipt(batchID string) (*audit.AuditBatchReceipt, error) {
	s.receiptsMu.RLock()
	receipt := s.receiptsByBatch[batchID]
	s.receiptsMu.RUnlock()

	if receipt == nil {
		return nil, errorcode.ErrorNotFound
	}

	receiptCopy := *receipt
	return &receiptCopy, nil
}

func (s *AuditService) GetBatchIDByEvidence(evidenceID string) (string, bool) {
	s.receiptsMu.RLock()
	batchID, ok := s.batchByEvidence[evidenceID]
	s.receiptsMu.RUnlock()

	return batchID, ok
}

func (s *AuditService) ListBatchEvidence(batchID string) ([]*evidence.EvidenceRecord, error) {
	s.receiptsMu.RLock()
	batch := s.evidenceByBatch[batchID]
	s.receiptsMu.RUnlock()

	if batch == nil {
		return nil, errorcode.ErrorNotFound
	}

	result := make([]*evidence.EvidenceRecord, len(batch))
	copy(result, batch)
	return result, nil
}

func (s *AuditService) BuildMembershipProof(batchID string, evidenceID string) ([]merkleutils.ProofStep, error) {
	s.receiptsMu.RLock()
	leaves := s.leavesByBatch[batchID]
	s.receiptsMu.RUnlock()

	if leaves == nil {
		return nil, errorcode.ErrorNotFound
	}

	index := -1
	for i, leaf := range leaves {
		if leaf == evidenceID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("证据 %v 不属于批次 %v", evidenceID, batchID)
	}

	return merkleutils.BuildProof(leaves, index)
}
