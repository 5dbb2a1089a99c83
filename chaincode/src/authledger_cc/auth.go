package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/authorization"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/peer"
)

// publishAuthorizationParams 为链码函数 `publishAuthorization` 的参数。
type publishAuthorizationParams struct {
	ResourceID string `json:"resourceID"`
	GranteeDid string `json:"granteeDid"`
	TtlSeconds int64  `json:"ttlSeconds"`
}

// publishAuthorization 发布一条授权记录。授权 ID 取交易 ID，过期时间以交易提案时间为基准，
// 以保证各背书节点计算结果一致。
func (cc *AuthLedgerCC) publishAuthorization(stub shim.ChaincodeStubInterface, args []string) peer.Response {
	// 检查参数数量
	lenArgs := len(args)
	if lenArgs != 1 {
		return shim.Error("参数数量不正确。应为 1 个")
	}

	// 解析参数
	params := publishAuthorizationParams{}
	if err := json.Unmarshal([]byte(args[0]), &params); err != nil {
		return shim.Error(fmt.Sprintf("无法解析参数，应为 JSON object: %v", err))
	}

	if params.ResourceID == "" {
		return shim.Error("参数中缺少 resourceID")
	}
	if params.GranteeDid == "" {
		return shim.Error("参数中缺少 granteeDid")
	}
	if params.TtlSeconds <= 0 {
		return shim.Error(fmt.Sprintf("参数 ttlSeconds 值为 %v。应为正整数", params.TtlSeconds))
	}

	// 授权 ID 取交易 ID，时间取交易提案时间
	authorizationID := stub.GetTxID()
	txTime, err := getTimeFromStub(stub)
	if err != nil {
		return shim.Error(fmt.Sprintf("无法获取交易时间戳: %v", err))
	}

	record := authorization.AuthorizationRecord{
		AuthorizationID: authorizationID,
		ResourceID:      params.ResourceID,
		GranteeDid:      params.GranteeDid,
		Expiry:          txTime.Add(time.Duration(params.TtlSeconds) * time.Second),
		Revoked:         false,
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return shim.Error(fmt.Sprintf("无法序列化授权记录: %v", err))
	}

	if err := stub.PutState(getKeyForAuthorization(authorizationID), recordBytes); err != nil {
		return shim.Error(fmt.Sprintf("无法存储授权记录: %v", err))
	}

	return shim.Success([]byte(authorizationID))
}

// isAuthorizationValid 检查授权记录当前对指定被授权方是否有效。
// 记录不存在不视为错误，与撤销、过期、被授权方不匹配一样返回 "false"。
func (cc *AuthLedgerCC) isAuthorizationValid(stub shim.ChaincodeStubInterface, args []string) peer.Response {
	// 检查参数数量
	lenArgs := len(args)
	if lenArgs != 2 {
		return shim.Error("参数数量不正确。应为 2 个")
	}

	// args = [authorizationID string, granteeDid string]
	authorizationID := args[0]
	granteeDid := args[1]

	recordBytes, err := stub.GetState(getKeyForAuthorization(authorizationID))
	if err != nil {
		return shim.Error(fmt.Sprintf("无法读取授权记录: %v", err))
	}
	if recordBytes == nil {
		return shim.Success([]byte(strconv.FormatBool(false)))
	}

	record := authorization.AuthorizationRecord{}
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		return shim.Error(fmt.Sprintf("无法解析授权记录: %v", err))
	}

	txTime, err := getTimeFromStub(stub)
	if err != nil {
		return shim.Error(fmt.Sprintf("无法获取交易时间戳: %v", err))
	}

	isValid := !record.Revoked && record.GranteeDid == granteeDid && !txTime.After(record.Expiry)
	return shim.Success([]byte(strconv.FormatBool(isValid)))
}

// revokeAuthorization 撤销授权记录。撤销单调且幂等，记录本身保留以供审计。
func (cc *AuthLedgerCC) revokeAuthorization(stub shim.ChaincodeStubInterface, args []string) peer.Response {
	// 检查参数数量
	lenArgs := len(args)
	if lenArgs != 1 {
		return shim.Error("参数数量不正确。应为 1 个")
	}

	// args = [authorizationID string]
	authorizationID := args[0]

	key := getKeyForAuthorization(authorizationID)
	recordBytes, err := stub.GetState(key)
	if err != nil {
		return shim.Error(fmt.Sprintf("无法读取授权记录: %v", err))
	}
	if recordBytes == nil {
		return shim.Error(errorcode.CodeNotFound)
	}

	record := authorization.AuthorizationRecord{}
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		return shim.Error(fmt.Sprintf("无法解析授权记录: %v", err))
	}

	// 已撤销则无须重写状态
	if record.Revoked {
		return shim.Success(nil)
	}

	record.Revoked = true
	recordBytes, err = json.Marshal(record)
	if err != nil {
		return shim.Error(fmt.Sprintf("无法序列化授权记录: %v", err))
	}

	if err := stub.PutState(key, recordBytes); err != nil {
		return shim.Error(fmt.Sprintf("无法存储授权记录: %v", err))
	}

	return shim.Success(nil)
}

// getAuthorization 返回授权记录，若未找到则返回 codeNotFound。
func (cc *AuthLedgerCC) getAuthorization(stub shim.ChaincodeStubInterface, args []string) peer.Response {
	// 检查参数数量
	lenArgs := len(args)
	if lenArgs != 1 {
		return shim.Error("参数数量不正确。应为 1 个")
	}

	// args = [authorizationID string]
	authorizationID := args[0]

	recordBytes, err := stub.GetState(getKeyForAuthorization(authorizationID))
	if err != nil {
		return shim.Error(fmt.Sprintf("无法读取授权记录: %v", err))
	}
	if recordBytes == nil {
		return shim.Error(errorcode.CodeNotFound)
	}

	return shim.Success(recordBytes)
}
