package service

import (
	"strconv"
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/store"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/idutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/timingutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/wrap"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tjfoc/gmsm/sm2"
)

// enforcementSession 为单个 wrap 令牌的会话状态。
// DEK 与导出的对称密钥只存在于这里；会话关闭时二者被就地清零。
// `exhausted` 表示调用上限已耗尽。耗尽为终态：会话不可重建，令牌不可再接受。
type enforcementSession struct {
	mu              sync.Mutex
	requestID       string
	requesterDid    string
	attestationHash string
	resourceID      string
	dek             []byte
	symmetricKey    []byte
	maxCalls        int
	usedCalls       int
	purpose         string
	active          bool
	exhausted       bool
}

// EnforcementService 实现了 `EnforcementServiceInterface` 接口。
// 运行在接收会话主机一侧，持有主机私钥；协调器一侧的状态一律通过接口访问，绝不直接触碰。
type EnforcementService struct {
	SessionHostID   string
	PrivateKey      *sm2.PrivateKey // 会话主机私钥，用于解封 DEK 与签署会话证据
	IssuerPublicKey *sm2.PublicKey  // 签发方公钥，用于验证 wrap 令牌签名
	Coordinator     IssuanceServiceInterface
	ResourceStore   store.IResourceStore
	Audit           AuditServiceInterface

	mu       sync.Mutex
	sessions map[string]*enforcementSession
}

func NewEnforcementService(
	sessionHostID string,
	privateKey *sm2.PrivateKey,
	issuerPublicKey *sm2.PublicKey,
	coordinator IssuanceServiceInterface,
	resourceStore store.IResourceStore,
	auditService AuditServiceInterface,
) *EnforcementService {
	return &EnforcementService{
		SessionHostID:   sessionHostID,
		PrivateKey:      privateKey,
		IssuerPublicKey: issuerPublicKey,
		Coordinator:     coordinator,
		ResourceStore:   resourceStore,
		Audit:           auditService,
		sessions:        make(map[string]*enforcementSession),
	}
}

func (s *EnforcementService) Accept(wrapID string) error {
	defer timingutils.GetDeferrableTimingLogger("接受 wrap 令牌")()

	s.mu.Lock()
	existing := s.sessions[wrapID]
	s.mu.Unlock()

	if existing != nil {
		existing.mu.Lock()
		active, exhausted := existing.active, existing.exhausted
		existing.mu.Unlock()
		if exhausted {
			// 耗尽为终态：即便令牌本身仍然有效也不再重建会话
			log.Infof("拒绝接受 wrap 令牌 %v: 调用上限已耗尽", wrapID)
			return errorcode.ErrorForbidden
		}
		if active {
			return nil
		}
	}

	token, err := s.Coordinator.FetchForSession(wrapID, s.SessionHostID)
	if err != nil {
		return err
	}

	// 绑定审计回执的签发方签名必须可验证，否则令牌不可信
	signedMsg := []byte(token.WrapID + "|" + token.RecipientSessionID + "|" + token.BoundReceiptHash)
	if !cipherutils.VerifyBytes(s.IssuerPublicKey, signedMsg, token.IssuerSignature) {
		log.Errorf("wrap 令牌 %v 的签发方签名验证失败", wrapID)
		return errorcode.ErrorForbidden
	}

	maxCalls, err := strconv.Atoi(token.UsageConstraints[wrap.ConstraintMaxCalls])
	if err != nil || maxCalls < 1 {
		return &ErrorBadRequest{errMsg: "wrap 令牌的调用上限约束不合法"}
	}

	dek, err := cipherutils.UnwrapDekWithPrivateKey(token.EncryptedDek, s.PrivateKey)
	if err != nil {
		return err
	}

	symmetricKey, err := cipherutils.DeriveSymmetricKeyFromDekBytes(dek)
	if err != nil {
		return err
	}

	resourceID, err := s.Coordinator.ResourceIDForRequest(token.RequestID)
	if err != nil {
		return errors.Wrap(err, "无法解析 wrap 令牌对应的资源")
	}

	requesterDid, attestationHash, err := s.Coordinator.RequesterForRequest(token.RequestID)
	if err != nil {
		return errors.Wrap(err, "无法解析 wrap 令牌对应的请求方")
	}

	s.mu.Lock()
	s.sessions[wrapID] = &enforcementSession{
		requestID:       token.RequestID,
		requesterDid:    requesterDid,
		attestationHash: attestationHash,
		resourceID:      resourceID,
		dek:             dek,
		symmetricKey:    symmetricKey,
		maxCalls:        maxCalls,
		purpose:         token.UsageConstraints[wrap.ConstraintPurpose],
		active:          true,
	}
	s.mu.Unlock()

	log.Infof("已接受 wrap 令牌 %v 并建立执行会话。调用上限=%v", wrapID, maxCalls)
	return nil
}

func (s *EnforcementService) Use(wrapID string, purpose string) (string, error) {
	defer timingutils.GetDeferrableTimingLogger("会话内使用一次 DEK")()

	s.mu.Lock()
	session := s.sessions[wrapID]
	s.mu.Unlock()

	// 懒接受：尚无活跃会话时先走完整的接受流程。耗尽的会话不可重建。
	needAccept := session == nil
	if !needAccept {
		session.mu.Lock()
		exhausted := session.exhausted
		needAccept = !session.active
		session.mu.Unlock()
		if exhausted {
			log.Infof("拒绝使用 wrap 令牌 %v: 调用上限已耗尽", wrapID)
			return "", errorcode.ErrorForbidden
		}
	}
	if needAccept {
		if err := s.Accept(wrapID); err != nil {
			return "", err
		}
		s.mu.Lock()
		session = s.sessions[wrapID]
		s.mu.Unlock()
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	// 每次使用都重新获取令牌，保证撤销与过期即时生效
	if _, err := s.Coordinator.FetchForSession(wrapID, s.SessionHostID); err != nil {
		if errors.Cause(err) == errorcode.ErrorRevoked {
			s.closeSessionLocked(wrapID, session)
		}
		return "", err
	}

	if !session.active {
		return "", errorcode.ErrorRevoked
	}
	if purpose != session.purpose {
		log.Infof("拒绝使用 wrap 令牌 %v: 用途 %v 与约束 %v 不符", wrapID, purpose, session.purpose)
		return "", errorcode.ErrorForbidden
	}
	if session.usedCalls >= session.maxCalls {
		log.Infof("拒绝使用 wrap 令牌 %v: 已达调用上限 %v", wrapID, session.maxCalls)
		return "", errorcode.ErrorForbidden
	}

	res, err := s.ResourceStore.GetResource(session.resourceID)
	if err != nil {
		return "", err
	}

	plaintext, err := cipherutils.DecryptBytesUsingAESKey(res.Ciphertext, session.symmetricKey)
	if err != nil {
		return "", errors.Wrap(err, "无法用会话密钥解密资源内容")
	}

	session.usedCalls++
	outputHash := cipherutils.Sha256Hex(append(plaintext, []byte(":"+strconv.Itoa(session.usedCalls))...))

	if err := s.recordSessionEvidence(session, evidence.DecisionTeeUsageOk); err != nil {
		return "", err
	}

	log.Infof("wrap 令牌 %v 完成第 %v/%v 次使用。输出摘要=%v", wrapID, session.usedCalls, session.maxCalls, outputHash)

	// 最后一次使用完成后会话即进入耗尽终态，密钥材料随之销毁
	if session.usedCalls >= session.maxCalls {
		s.closeSessionLocked(wrapID, session)
		session.exhausted = true
		log.Infof("wrap 令牌 %v 的调用上限已耗尽，会话已关闭并销毁密钥材料", wrapID)
	}

	return outputHash, nil
}

func (s *EnforcementService) OnRevoke(wrapID string) error {
	s.mu.Lock()
	session := s.sessions[wrapID]
	s.mu.Unlock()

	if session == nil {
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.active {
		return nil
	}

	s.closeSessionLocked(wrapID, session)

	if err := s.recordSessionEvidence(session, evidence.DecisionTeeRevokeAck); err != nil {
		return err
	}

	log.Infof("已确认 wrap 令牌 %v 的撤销并销毁会话密钥材料", wrapID)
	return nil
}

// closeSessionLocked 就地清零会话内的密钥材料并关闭会话。调用方须持有 session.mu。
func (s *EnforcementService) closeSessionLocked(wrapID string, session *enforcementSession) {
	for i := range session.dek {
		session.dek[i] = 0
	}
	for i := range session.symmetricKey {
		session.symmetricKey[i] = 0
	}
	session.active = false
}

// recordSessionEvidence 产生一条会话证据并提交至审计账本。调用方须持有 session.mu。
func (s *EnforcementService) recordSessionEvidence(session *enforcementSession, decision string) error {
	evidenceID, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return err
	}

	signature, err := cipherutils.SignBytes(s.PrivateKey, []byte(evidenceID+"|"+session.requestID+"|"+decision))
	if err != nil {
		return errors.Wrap(err, "无法签署会话证据")
	}

	record := &evidence.EvidenceRecord{
		EvidenceID:             evidenceID,
		RequestID:              session.requestID,
		RequesterDid:           session.requesterDid,
		AttestationSummaryHash: session.attestationHash,
		DecisionResult:         decision,
		Timestamp:              time.Now(),
		SessionSignature:       signature,
	}

	if err := s.Audit.SubmitEvidence(record); err != nil {
		return errors.Wrap(err, "无法提交会话证据")
	}

	return nil
}
