package memledger

import (
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/utils/idutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/authorization"
	log "github.com/sirupsen/logrus"
)

// AuthLedgerMemImpl 实现了 `ledger.IAuthLedger` 接口，以进程内存储模拟链上授权账本。
// 真实部署中这里换成链码调用（见 fabricledger 实现），状态机不变。
type AuthLedgerMemImpl struct {
	mu      sync.RWMutex
	records map[string]*authorization.AuthorizationRecord
}

func NewAuthLedgerMemImpl() *AuthLedgerMemImpl {
	return &AuthLedgerMemImpl{
		records: make(map[string]*authorization.AuthorizationRecord),
	}
}

func (l *AuthLedgerMemImpl) PublishAuthorization(resourceID string, granteeDid string, ttl time.Duration) (string, error) {
	authorizationID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return "", err
	}

	record := &authorization.AuthorizationRecord{
		AuthorizationID: authorizationID,
		ResourceID:      resourceID,
		GranteeDid:      granteeDid,
		Expiry:          time.Now().Add(ttl),
		Revoked:         false,
	}

	l.mu.Lock()
	l.records[authorizationID] = record
	l.mu.Unlock()

	log.Infof("已发布授权记录: authorizationID=%v resourceID=%v grantee=%v", authorizationID, resourceID, granteeDid)
	return authorizationID, nil
}

func (l *AuthLedgerMemImpl) IsAuthorizationValid(authorizationID string, granteeDid string) (bool, error) {
	l.mu.RLock()
	record := l.records[authorizationID]
	l.mu.RUnlock()

	if record == nil {
		return false, nil
	}
	if record.Revoked {
		return false, nil
	}
	if record.GranteeDid != granteeDid {
		return false, nil
	}

	return !time.Now().After(record.Expiry), nil
}

func (l *AuthLedgerMemImpl) RevokeAuthorization(authorizationID string) error {
	l.mu.Lock()
	record := l.records[authorizationID]
	if record != nil {
		record.Revoked = true
	}
	l.mu.Unlock()

	if record == nil {
		return errorcode.ErrorNotFound
	}

	log.Infof("授权已撤销: %v", authorizationID)
	return nil
}

func (l *AuthLedgerMemImpl) GetAuthorization(authorizationID string) (*authorization.AuthorizationRecord, error) {
	l.mu.RLock()
	record := l.records[authorizationID]
	l.mu.RUnlock()

	if record == nil {
		return nil, errorcode.ErrorNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}
