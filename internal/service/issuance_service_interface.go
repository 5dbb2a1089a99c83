package service

import (
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/request"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/wrap"
	"github.com/tjfoc/gmsm/sm2"
)

// IssuanceServiceInterface 定义了签发协调器的接口：
// 受理访问请求、产生决策证据、在审计回执可用后完成 wrap 令牌签发、响应授权撤销。
type IssuanceServiceInterface interface {
	// RegisterSessionHost 登记一个执行会话主机的公钥。wrap 令牌只为已登记的主机包装。
	RegisterSessionHost(sessionHostID string, publicKey *sm2.PublicKey)

	// HandleRequest 处理一个访问请求。每个请求 ID 只被消费一次，
	// 重复提交直接按未接受返回，不产生任何副作用。
	//
	// 参数：
	//   访问请求
	//   接收会话主机 ID
	//
	// 返回：
	//   wrap 令牌 ID（接受时）
	//   是否接受
	HandleRequest(req *request.AccessRequest, sessionHostID string) (wrapID string, accepted bool, err error)

	// FinalizePending 尝试完成所有待定 wrap 令牌的签发：
	// 对每个待定令牌，查找覆盖其受理证据的审计批次，验证 Merkle 成员证明后绑定回执并签名。
	// 证据尚未入批的令牌保持待定，等待下一次调用。幂等。
	//
	// 返回：
	//   本次完成签发的令牌数
	FinalizePending() (int, error)

	// OnAuthorizationRevoked 将绑定了指定授权的全部 wrap 令牌标记为已撤销并发布撤销事件。
	// 撤销单调不可逆；对已撤销的令牌重复调用无副作用。
	//
	// 返回：
	//   本次新标记为已撤销的令牌数
	OnAuthorizationRevoked(authorizationID string) (int, error)

	// FetchForSession 为执行会话获取已签发的 wrap 令牌（快照副本）。
	//
	// 可能返回的已分类错误：
	//   `errorcode.ErrorNotFound`  令牌不存在
	//   `errorcode.ErrorForbidden` 令牌不属于该会话主机
	//   `errorcode.ErrorRevoked`   令牌已被撤销
	//   `errorcode.ErrorNotReady`  令牌尚未完成签发（可稍后重试）
	//   `errorcode.ErrorExpired`   令牌不在有效期窗口内
	FetchForSession(wrapID string, sessionHostID string) (*wrap.WrapToken, error)

	// GetWrap 获取 wrap 令牌的快照副本（不做会话归属与状态检查）。
	// 不存在时返回 `errorcode.ErrorNotFound`。
	GetWrap(wrapID string) (*wrap.WrapToken, error)

	// ResourceIDForRequest 返回指定访问请求对应的资源 ID。
	// 该请求未产生 wrap 令牌时返回 `errorcode.ErrorNotFound`。
	ResourceIDForRequest(requestID string) (string, error)

	// RequesterForRequest 返回指定访问请求的请求方 DID 与远程证明摘要，
	// 供会话主机在会话证据中回填请求方上下文。
	// 该请求未产生 wrap 令牌时返回 `errorcode.ErrorNotFound`。
	RequesterForRequest(requestID string) (requesterDid string, attestationSummaryHash string, err error)
}
