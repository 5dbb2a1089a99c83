package memledger

import (
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/utils/idutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/identity"
	log "github.com/sirupsen/logrus"
)

// IdentityRegistryMemImpl 实现了 `ledger.IIdentityRegistry` 接口，以进程内存储模拟 DID 注册处。
type IdentityRegistryMemImpl struct {
	mu       sync.RWMutex
	receipts map[string]*identity.IdentityReceipt
}

func NewIdentityRegistryMemImpl() *IdentityRegistryMemImpl {
	return &IdentityRegistryMemImpl{
		receipts: make(map[string]*identity.IdentityReceipt),
	}
}

func (r *IdentityRegistryMemImpl) Register(did string, publicKeyFingerprint string) (*identity.IdentityReceipt, error) {
	receiptID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return nil, err
	}

	receipt := &identity.IdentityReceipt{
		Did:                  did,
		PublicKeyFingerprint: publicKeyFingerprint,
		Timestamp:            time.Now(),
		ReceiptID:            receiptID,
	}

	r.mu.Lock()
	r.receipts[did] = receipt
	r.mu.Unlock()

	log.Infof("DID 已注册: %v", did)

	receiptCopy := *receipt
	return &receiptCopy, nil
}

func (r *IdentityRegistryMemImpl) Query(did string) (*identity.IdentityReceipt, error) {
	r.mu.RLock()
	receipt := r.receipts[did]
	r.mu.RUnlock()

	if receipt == nil {
		return nil, errorcode.ErrorNotFound
	}

	receiptCopy := *receipt
	return &receiptCopy, nil
}
