package main

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/peer"
)

// AuthLedgerCC 实现 Chaincode 接口。它负责授权记录在区块链上的发布、校验、撤销与查询。
type AuthLedgerCC struct{}

// Init 用于初始化链码。
func (cc *AuthLedgerCC) Init(stub shim.ChaincodeStubInterface) peer.Response {
	args := stub.GetArgs()
	if len(args) != 0 {
		return shim.Error("初始化不接收参数")
	}

	return shim.Success(nil)
}

// Invoke 用于分流链码调用。
func (cc *AuthLedgerCC) Invoke(stub shim.ChaincodeStubInterface) peer.Response {
	// 解出具体函数名与参数
	funcName, args := stub.GetFunctionAndParameters()

	switch funcName {
	// auth.go
	case "publishAuthorization":
		return cc.publishAuthorization(stub, args)
	case "isAuthorizationValid":
		return cc.isAuthorizationValid(stub, args)
	case "revokeAuthorization":
		return cc.revokeAuthorization(stub, args)
	case "getAuthorization":
		return cc.getAuthorization(stub, args)
	}

	return shim.Error("未知的链码函数调用")
}

func main() {
	err := shim.Start(new(AuthLedgerCC))
	if err != nil {
		fmt.Printf("无法启动 AuthLedgerCC: %s", err)
	}
}
