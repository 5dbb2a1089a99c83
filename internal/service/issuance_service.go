package service

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/ledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/store"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/idutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/merkleutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/timingutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/request"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/wrap"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tjfoc/gmsm/sm2"
)

// wrapEntry 把 wrap 令牌与其受理证据、目标资源关联在一起。
// 令牌的完成签发与撤销都在 entry 级互斥量下进行，保证二者的先后可见性一致。
type wrapEntry struct {
	mu              sync.Mutex
	token           *wrap.WrapToken
	evidenceID      string
	resourceID      string
	requesterDid    string
	attestationHash string
}

// IssuanceService 实现了 `IssuanceServiceInterface` 接口。
// 所有状态由实例持有并通过构造函数注入依赖，不依赖任何进程级可变全局量。
type IssuanceService struct {
	PrivateKey       *sm2.PrivateKey        // 签发方签名私钥
	IdentityRegistry ledger.IIdentityRegistry
	AuthLedger       ledger.IAuthLedger
	Audit            AuditServiceInterface
	ResourceStore    store.IResourceStore
	EventMgr         eventmgr.IEventManager // 撤销事件发布目标。可为 nil。
	WrapTTL          time.Duration          // wrap 令牌有效期时长

	mu                sync.RWMutex
	wraps             map[string]*wrapEntry
	wrapByRequest     map[string]string
	processedRequests map[string]bool
	sessionHostKeys   map[string]*sm2.PublicKey
}

func NewIssuanceService(
	privateKey *sm2.PrivateKey,
	identityRegistry ledger.IIdentityRegistry,
	authLedger ledger.IAuthLedger,
	auditService AuditServiceInterface,
	resourceStore store.IResourceStore,
	eventManager eventmgr.IEventManager,
	wrapTTL time.Duration,
) *IssuanceService {
	return &IssuanceService{
		PrivateKey:        privateKey,
		IdentityRegistry:  identityRegistry,
		AuthLedger:        authLedger,
		Audit:             auditService,
		ResourceStore:     resourceStore,
		EventMgr:          eventManager,
		WrapTTL:           wrapTTL,
		wraps:             make(map[string]*wrapEntry),
		wrapByRequest:     make(map[string]string),
		processedRequests: make(map[string]bool),
		sessionHostKeys:   make(map[string]*sm2.PublicKey),
	}
}

func (s *IssuanceService) RegisterSessionHost(sessionHostID string, publicKey *sm2.PublicKey) {
	s.mu.Lock()
	s.sessionHostKeys[sessionHostID] = publicKey
	s.mu.Unlock()

	log.Infof("已登记执行会话主机: %v", sessionHostID)
}

func (s *IssuanceService) HandleRequest(req *request.AccessRequest, sessionHostID string) (string, bool, error) {
	defer timingutils.GetDeferrableTimingLogger("处理访问请求")()

	if req == nil || req.RequestID == "" {
		return "", false, &ErrorBadRequest{errMsg: "访问请求及其 ID 不能为空"}
	}

	// 每个请求只被消费一次。这里先占位，之后同一请求 ID 的提交一律视为重复。
	s.mu.Lock()
	if s.processedRequests[req.RequestID] {
		s.mu.Unlock()
		log.Warnf("访问请求 %v 已被处理过，忽略重复提交", req.RequestID)
		return "", false, nil
	}
	s.processedRequests[req.RequestID] = true
	hostKey := s.sessionHostKeys[sessionHostID]
	s.mu.Unlock()

	// 第 1 步：请求方签名必须存在
	if len(req.Signature) == 0 {
		log.Infof("拒绝访问请求 %v: 缺少请求方签名", req.RequestID)
		return "", false, nil
	}

	// 第 2 步：请求方 DID 必须已在注册处登记
	if _, err := s.IdentityRegistry.Query(req.RequesterDid); err != nil {
		if errors.Cause(err) == errorcode.ErrorNotFound {
			log.Infof("拒绝访问请求 %v: 请求方 %v 未注册", req.RequestID, req.RequesterDid)
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "无法查询请求方注册信息")
	}

	// 第 3 步：链上授权必须有效。无效时留下拒绝类证据后再拒绝。
	valid, err := s.AuthLedger.IsAuthorizationValid(req.AuthorizationID, req.RequesterDid)
	if err != nil {
		return "", false, errors.Wrap(err, "无法检查授权有效性")
	}
	if !valid {
		if _, err := s.recordDecisionEvidence(req, evidence.DecisionRejectAuthorization); err != nil {
			return "", false, err
		}
		log.Infof("拒绝访问请求 %v: 授权 %v 无效", req.RequestID, req.AuthorizationID)
		return "", false, nil
	}

	// 第 4 步：远程证明摘要必须存在
	if req.AttestationSummaryHash == "" {
		log.Infof("拒绝访问请求 %v: 缺少远程证明摘要", req.RequestID)
		return "", false, nil
	}

	// 第 5 步：受理。解析使用参数、为会话主机包装 DEK、创建待定令牌并留下受理证据。
	var usageParams request.UsageParams
	if err := mapstructure.Decode(req.UsageParameters, &usageParams); err != nil {
		return "", false, &ErrorBadRequest{errMsg: "无法解析使用参数: " + err.Error()}
	}
	if usageParams.MaxCalls < 1 || usageParams.Purpose == "" {
		return "", false, &ErrorBadRequest{errMsg: "使用参数必须包含正的调用上限与非空的用途标签"}
	}

	if hostKey == nil {
		return "", false, &ErrorBadRequest{errMsg: "执行会话主机 " + sessionHostID + " 未登记公钥"}
	}

	res, err := s.ResourceStore.GetResource(req.ResourceID)
	if err != nil {
		return "", false, err
	}

	encryptedDek, err := cipherutils.WrapDekForRecipient(res.Dek, hostKey)
	if err != nil {
		return "", false, err
	}

	evidenceID, err := s.recordDecisionEvidence(req, evidence.DecisionAllowPendingReceipt)
	if err != nil {
		return "", false, err
	}

	wrapID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return "", false, err
	}

	now := time.Now()
	token := &wrap.WrapToken{
		WrapID:                  wrapID,
		EncryptedDek:            encryptedDek,
		RecipientSessionID:      sessionHostID,
		RecipientKeyFingerprint: cipherutils.GetSM2PublicKeyFingerprint(hostKey),
		ValidFrom:               now,
		ValidTo:                 now.Add(s.WrapTTL),
		UsageConstraints: map[string]string{
			wrap.ConstraintMaxCalls: strconv.Itoa(usageParams.MaxCalls),
			wrap.ConstraintPurpose:  usageParams.Purpose,
		},
		BoundAuthorizationHash: cipherutils.Sha256Hex([]byte(req.AuthorizationID)),
		RequestID:              req.RequestID,
	}

	s.mu.Lock()
	s.wraps[wrapID] = &wrapEntry{
		token:           token,
		evidenceID:      evidenceID,
		resourceID:      req.ResourceID,
		requesterDid:    req.RequesterDid,
		attestationHash: req.AttestationSummaryHash,
	}
	s.wrapByRequest[req.RequestID] = wrapID
	s.mu.Unlock()

	log.Infof("已受理访问请求 %v，创建待定 wrap 令牌 %v，等待审计回执", req.RequestID, wrapID)
	return wrapID, true, nil
}

// recordDecisionEvidence 产生一条签发方决策证据并提交至审计账本。
func (s *IssuanceService) recordDecisionEvidence(req *request.AccessRequest, decision string) (string, error) {
	evidenceID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return "", err
	}

	signature, err := cipherutils.SignBytes(s.PrivateKey, []byte(evidenceID+"|"+req.RequestID+"|"+decision))
	if err != nil {
		return "", errors.Wrap(err, "无法签署决策证据")
	}

	record := &evidence.EvidenceRecord{
		EvidenceID:             evidenceID,
		RequestID:              req.RequestID,
		RequesterDid:           req.RequesterDid,
		AttestationSummaryHash: req.AttestationSummaryHash,
		DecisionResult:         decision,
		Timestamp:              time.Now(),
		IssuerSignature:        signature,
	}

	if err := s.Audit.SubmitEvidence(record); err != nil {
		return "", errors.Wrap(err, "无法提交决策证据")
	}

	return evidenceID, nil
}

func (s *IssuanceService) FinalizePending() (int, error) {
	defer timingutils.GetDeferrableTimingLogger("完成待定 wrap 令牌签发")()

	s.mu.RLock()
	entries := make([]*wrapEntry, 0, len(s.wraps))
	for _, entry := range s.wraps {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	finalized := 0
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.token.IsFinalized() || entry.token.Revoked {
			entry.mu.Unlock()
			continue
		}

		batchID, ok := s.Audit.GetBatchIDByEvidence(entry.evidenceID)
		if !ok {
			// 受理证据尚未入批，留待下一次
			entry.mu.Unlock()
			continue
		}

		receipt, err := s.Audit.GetReceipt(batchID)
		if err != nil {
			entry.mu.Unlock()
			return finalized, errors.Wrapf(err, "无法获取批次 %v 的回执", batchID)
		}

		// 绑定回执前先验证该批次确实覆盖本令牌的受理证据
		proof, err := s.Audit.BuildMembershipProof(batchID, entry.evidenceID)
		if err != nil {
			entry.mu.Unlock()
			return finalized, errors.Wrapf(err, "无法构造证据 %v 的成员证明", entry.evidenceID)
		}
		if !merkleutils.VerifyProof(entry.evidenceID, proof, receipt.MerkleRoot) {
			entry.mu.Unlock()
			log.Errorf("批次 %v 的成员证明验证失败，令牌 %v 保持待定", batchID, entry.token.WrapID)
			continue
		}

		boundReceiptHash := cipherutils.Sha256Hex([]byte(receipt.BatchID))
		signature, err := cipherutils.SignBytes(s.PrivateKey,
			[]byte(entry.token.WrapID+"|"+entry.token.RecipientSessionID+"|"+boundReceiptHash))
		if err != nil {
			entry.mu.Unlock()
			return finalized, errors.Wrap(err, "无法签署 wrap 令牌")
		}

		entry.token.BoundReceiptHash = boundReceiptHash
		entry.token.IssuerSignature = signature
		finalized++
		log.Infof("wrap 令牌 %v 已完成签发，绑定批次 %v", entry.token.WrapID, batchID)
		entry.mu.Unlock()
	}

	return finalized, nil
}

func (s *IssuanceService) OnAuthorizationRevoked(authorizationID string) (int, error) {
	authorizationHash := cipherutils.Sha256Hex([]byte(authorizationID))

	s.mu.RLock()
	entries := make([]*wrapEntry, 0, len(s.wraps))
	for _, entry := range s.wraps {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	revoked := 0
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.token.BoundAuthorizationHash != authorizationHash || entry.token.Revoked {
			entry.mu.Unlock()
			continue
		}

		entry.token.Revoked = true
		wrapID, requestID := entry.token.WrapID, entry.token.RequestID
		entry.mu.Unlock()

		revoked++
		log.Infof("wrap 令牌 %v 已因授权撤销而标记为已撤销", wrapID)

		if s.EventMgr != nil {
			payload, err := json.Marshal(&eventmgr.WrapRevokedEvent{WrapID: wrapID, RequestID: requestID})
			if err != nil {
				return revoked, errors.Wrap(err, "无法序列化撤销事件")
			}
			if err := s.EventMgr.Publish(eventmgr.EventIDWrapRevoked, payload); err != nil {
				log.Errorf("无法发布 wrap 令牌 %v 的撤销事件: %v", wrapID, err)
			}
		}
	}

	return revoked, nil
}

func (s *IssuanceService) FetchForSession(wrapID string, sessionHostID string) (*wrap.WrapToken, error) {
	s.mu.RLock()
	entry := s.wraps[wrapID]
	s.mu.RUnlock()

	if entry == nil {
		return nil, errorcode.ErrorNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.token.RecipientSessionID != sessionHostID {
		return nil, errorcode.ErrorForbidden
	}
	if entry.token.Revoked {
		return nil, errorcode.ErrorRevoked
	}
	if !entry.token.IsFinalized() {
		return nil, errorcode.ErrorNotReady
	}
	if !entry.token.IsWithinValidity(time.Now()) {
		return nil, errorcode.ErrorExpired
	}

	return copyWrapToken(entry.token), nil
}

func (s *IssuanceService) GetWrap(wrapID string) (*wrap.WrapToken, error) {
	s.mu.RLock()
	entry := s.wraps[wrapID]
	s.mu.RUnlock()

	if entry == nil {
		return nil, errorcode.ErrorNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return copyWrapToken(entry.token), nil
}

func (s *IssuanceService) ResourceIDForRequest(requestID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wrapID, ok := s.wrapByRequest[requestID]
	if !ok {
		return "", errorcode.ErrorNotFound
	}

	return s.wraps[wrapID].resourceID, nil
}

func (s *IssuanceService) RequesterForRequest(requestID string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wrapID, ok := s.wrapByRequest[requestID]
	if !ok {
		return "", "", errorcode.ErrorNotFound
	}

	entry := s.wraps[wrapID]
	return entry.requesterDid, entry.attestationHash, nil
}

// copyWrapToken 产生令牌的深拷贝快照，调用方可自由持有而不影响协调器内部状态。
func copyWrapToken(token *wrap.WrapToken) *wrap.WrapToken {
	tokenCopy := *token

	tokenCopy.EncryptedDek = make([]byte, len(token.EncryptedDek))
	copy(tokenCopy.EncryptedDek, token.EncryptedDek)

	tokenCopy.IssuerSignature = make([]byte, len(token.IssuerSignature))
	copy(tokenCopy.IssuerSignature, token.IssuerSignature)

	tokenCopy.UsageConstraints = make(map[string]string, len(token.UsageConstraints))
	for k, v := range token.UsageConstraints {
		tokenCopy.UsageConstraints[k] = v
	}

	return &tokenCopy
}
