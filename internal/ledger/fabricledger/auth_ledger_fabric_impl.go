package fabricledger

import (
	"encoding/json"
	"strconv"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/ledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/timingutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/authorization"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/channel"
	"github.com/pkg/errors"
)

// AuthLedgerFabricImpl 实现了 `ledger.IAuthLedger` 接口，将授权账本的各项操作转为对链码的调用。
type AuthLedgerFabricImpl struct {
	ctx *FabricChaincodeCtx
}

func NewAuthLedgerFabricImpl(ctx *FabricChaincodeCtx) *AuthLedgerFabricImpl {
	return &AuthLedgerFabricImpl{
		ctx: ctx,
	}
}

// publishAuthorizationParams 为链码函数 `publishAuthorization` 的参数。
type publishAuthorizationParams struct {
	ResourceID string `json:"resourceID"`
	GranteeDid string `json:"granteeDid"`
	TtlSeconds int64  `json:"ttlSeconds"`
}

func (l *AuthLedgerFabricImpl) PublishAuthorization(resourceID string, granteeDid string, ttl time.Duration) (string, error) {
	params := publishAuthorizationParams{
		ResourceID: resourceID,
		GranteeDid: granteeDid,
		TtlSeconds: int64(ttl / time.Second),
	}

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return "", errors.Wrap(err, "无法序列化链码参数")
	}

	chaincodeFcn := "publishAuthorization"
	channelReq := channel.Request{
		ChaincodeID: l.ctx.ChaincodeID,
		Fcn:         chaincodeFcn,
		Args:        [][]byte{paramsBytes},
	}

	resp, err := executeChannelRequestWithTimer(l.ctx.ChannelClient, &channelReq, "链上发布授权记录")
	if err != nil {
		return "", ledger.GetClassifiedError(chaincodeFcn, err)
	}

	return string(resp.Payload), nil
}

func (l *AuthLedgerFabricImpl) IsAuthorizationValid(authorizationID string, granteeDid string) (bool, error) {
	chaincodeFcn := "isAuthorizationValid"
	channelReq := channel.Request{
		ChaincodeID: l.ctx.ChaincodeID,
		Fcn:         chaincodeFcn,
		Args:        [][]byte{[]byte(authorizationID), []byte(granteeDid)},
	}

	resp, err := l.ctx.ChannelClient.Query(channelReq)
	if err != nil {
		return false, ledger.GetClassifiedError(chaincodeFcn, err)
	}

	isValid, err := strconv.ParseBool(string(resp.Payload))
	if err != nil {
		return false, errors.Wrap(err, "无法解析链码返回的授权有效性")
	}

	return isValid, nil
}

func (l *AuthLedgerFabricImpl) RevokeAuthorization(authorizationID string) error {
	chaincodeFcn := "revokeAuthorization"
	channelReq := channel.Request{
		ChaincodeID: l.ctx.ChaincodeID,
		Fcn:         chaincodeFcn,
		Args:        [][]byte{[]byte(authorizationID)},
	}

	_, err := executeChannelRequestWithTimer(l.ctx.ChannelClient, &channelReq, "链上撤销授权记录")
	if err != nil {
		return ledger.GetClassifiedError(chaincodeFcn, err)
	}

	return nil
}

func (l *AuthLedgerFabricImpl) GetAuthorization(authorizationID string) (*authorization.AuthorizationRecord, error) {
	chaincodeFcn := "getAuthorization"
	channelReq := channel.Request{
		ChaincodeID: l.ctx.ChaincodeID,
		Fcn:         chaincodeFcn,
		Args:        [][]byte{[]byte(authorizationID)},
	}

	resp, err := l.ctx.ChannelClient.Query(channelReq)
	if err != nil {
		return nil, ledger.GetClassifiedError(chaincodeFcn, err)
	}

	var record authorization.AuthorizationRecord
	if err := json.Unmarshal(resp.Payload, &record); err != nil {
		return nil, errors.Wrap(err, "无法解析链码返回的授权记录")
	}

	return &record, nil
}

func executeChannelRequestWithTimer(channelClient *channel.Client, channelRequest *channel.Request, timerMsg string) (resp channel.Response, err error) {
	defer timingutils.GetDeferrableTimingLogger(timerMsg)()

	resp, err = channelClient.Execute(*channelRequest)
	return
}
