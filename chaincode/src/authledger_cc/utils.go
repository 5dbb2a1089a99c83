package main

import (
	"fmt"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Auth 对应“授权记录”的 key 的前缀
const Auth = "auth"

func getKeyForAuthorization(authorizationID string) string {
	return fmt.Sprintf("%s_%s", Auth, authorizationID)
}

func getTimeFromStub(stub shim.ChaincodeStubInterface) (ret time.Time, err error) {
	// 从 stub 中得到交易提案创建时间
	timestamp, err := stub.GetTxTimestamp()
	if err != nil {
		return
	}

	// 转为 Go 中的 time.Time
	ret = time.Unix(timestamp.GetSeconds(), int64(timestamp.GetNanos()))
	return
}
