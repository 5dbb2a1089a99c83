package memledger

import (
	"testing"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/stretchr/testify/assert"
)

const (
	testResourceID = "resource-1"
	testGranteeDid = "did:example:alice"
)

func TestPublishAuthorizationAndGet(t *testing.T) {
	ledger := NewAuthLedgerMemImpl()

	authorizationID, err := ledger.PublishAuthorization(testResourceID, testGranteeDid, time.Hour)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.NotEmpty(t, authorizationID)

	record, err := ledger.GetAuthorization(authorizationID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, authorizationID, record.AuthorizationID)
	assert.Equal(t, testResourceID, record.ResourceID)
	assert.Equal(t, testGranteeDid, record.GranteeDid)
	assert.False(t, record.Revoked)
}

func TestGetAuthorizationOnUnknownID(t *testing.T) {
	ledger := NewAuthLedgerMemImpl()

	_, err := ledger.GetAuthorization("no-such-authorization")
	assert.Equal(t, errorcode.ErrorNotFound, err)
}

func TestIsAuthorizationValidMatrix(t *testing.T) {
	ledger := NewAuthLedgerMemImpl()

	authorizationID, err := ledger.PublishAuthorization(testResourceID, testGranteeDid, time.Hour)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// 有效授权对被授权方有效
	isValid, err := ledger.IsAuthorizationValid(authorizationID, testGranteeDid)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.True(t, isValid)

	// 对其他 DID 无效，但不报错
	isValid, err = ledger.IsAuthorizationValid(authorizationID, "did:example:bob")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.False(t, isValid)

	// 未知授权 ID 无效，但不报错
	isValid, err = ledger.IsAuthorizationValid("no-such-authorization", testGranteeDid)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.False(t, isValid)
}

func TestIsAuthorizationValidAfterExpiry(t *testing.T) {
	ledger := NewAuthLedgerMemImpl()

	authorizationID, err := ledger.PublishAuthorization(testResourceID, testGranteeDid, time.Millisecond)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	time.Sleep(5 * time.Millisecond)

	isValid, err := ledger.IsAuthorizationValid(authorizationID, testGranteeDid)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.False(t, isValid)
}

func TestRevokeAuthorizationIsMonotonicAndIdempotent(t *testing.T) {
	ledger := NewAuthLedgerMemImpl()

	authorizationID, err := ledger.PublishAuthorization(testResourceID, testGranteeDid, time.Hour)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	err = ledger.RevokeAuthorization(authorizationID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	isValid, err := ledger.IsAuthorizationValid(authorizationID, testGranteeDid)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.False(t, isValid)

	// 记录保留且带撤销标志
	record, err := ledger.GetAuthorization(authorizationID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.True(t, record.Revoked)

	// 重复撤销为幂等操作
	assert.NoError(t, ledger.RevokeAuthorization(authorizationID))

	// 撤销未知授权返回未找到
	assert.Equal(t, errorcode.ErrorNotFound, ledger.RevokeAuthorization("no-such-authorization"))
}
