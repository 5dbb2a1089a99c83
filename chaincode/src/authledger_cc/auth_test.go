package main

import (
	"encoding/json"
	"strconv"
	"testing"

	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/authorization"
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
)

const (
	sampleResourceID = "resource-1"
	sampleGranteeDid = "did:example:alice"
)

// Publishes an authorization and returns its ID (which equals the transaction ID).
func publishSampleAuthorization(t *testing.T, stub *shimtest.MockStub, resourceID string, granteeDid string, ttlSeconds int64) string {
	params := publishAuthorizationParams{
		ResourceID: resourceID,
		GranteeDid: granteeDid,
		TtlSeconds: ttlSeconds,
	}
	paramsBytes, _ := json.Marshal(params)

	txID := uuid.NewString()
	resp := stub.MockInvoke(txID, [][]byte{[]byte("publishAuthorization"), paramsBytes})
	expectResponseStatusOK(t, &resp)

	// The authorization ID must be the transaction ID
	expectEqual(t, txID, string(resp.Payload))

	return string(resp.Payload)
}

func invokeIsAuthorizationValid(stub *shimtest.MockStub, authorizationID string, granteeDid string) (bool, error) {
	resp := stub.MockInvoke(uuid.NewString(), [][]byte{[]byte("isAuthorizationValid"), []byte(authorizationID), []byte(granteeDid)})
	return strconv.ParseBool(string(resp.Payload))
}

func TestPublishAuthorizationStoresRecord(t *testing.T) {
	stub := createMockStub(t, "TestPublishAuthorizationStoresRecord")
	_ = initChaincode(stub, [][]byte{})

	authorizationID := publishSampleAuthorization(t, stub, sampleResourceID, sampleGranteeDid, 3600)

	// Check if the stored record can be parsed
	recordBytes := stub.State[getKeyForAuthorization(authorizationID)]
	record := authorization.AuthorizationRecord{}
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		testLogger.Infof("Cannot read stored authorization record: %v\n", err)
		t.FailNow()
	}

	// Check if the stored record is correct
	expectEqual(t, authorizationID, record.AuthorizationID)
	expectEqual(t, sampleResourceID, record.ResourceID)
	expectEqual(t, sampleGranteeDid, record.GranteeDid)
	expectEqual(t, false, record.Revoked)
}

func TestPublishAuthorizationWithInvalidParams(t *testing.T) {
	targetFunction := "publishAuthorization"

	stub := createMockStub(t, "TestPublishAuthorizationWithInvalidParams")
	_ = initChaincode(stub, [][]byte{})

	// Invoke without args and expect the response status to be ERROR
	resp := stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction)})
	expectResponseStatusERROR(t, &resp)

	// Invoke without a resource ID and expect the response status to be ERROR
	paramsBytes, _ := json.Marshal(publishAuthorizationParams{
		GranteeDid: sampleGranteeDid,
		TtlSeconds: 3600,
	})
	resp = stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), paramsBytes})
	expectResponseStatusERROR(t, &resp)

	// Invoke with a non-positive TTL and expect the response status to be ERROR
	paramsBytes, _ = json.Marshal(publishAuthorizationParams{
		ResourceID: sampleResourceID,
		GranteeDid: sampleGranteeDid,
		TtlSeconds: 0,
	})
	resp = stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), paramsBytes})
	expectResponseStatusERROR(t, &resp)
}

func TestIsAuthorizationValidForGrantee(t *testing.T) {
	stub := createMockStub(t, "TestIsAuthorizationValidForGrantee")
	_ = initChaincode(stub, [][]byte{})

	authorizationID := publishSampleAuthorization(t, stub, sampleResourceID, sampleGranteeDid, 3600)

	// The record should be valid for the grantee
	isValid, err := invokeIsAuthorizationValid(stub, authorizationID, sampleGranteeDid)
	expectEqual(t, nil, err)
	expectEqual(t, true, isValid)

	// The record should be invalid for a different DID
	isValid, err = invokeIsAuthorizationValid(stub, authorizationID, "did:example:bob")
	expectEqual(t, nil, err)
	expectEqual(t, false, isValid)

	// An unknown authorization ID should be invalid rather than an error
	isValid, err = invokeIsAuthorizationValid(stub, "no-such-authorization", sampleGranteeDid)
	expectEqual(t, nil, err)
	expectEqual(t, false, isValid)
}

func TestRevokeAuthorizationInvalidatesRecord(t *testing.T) {
	targetFunction := "revokeAuthorization"

	stub := createMockStub(t, "TestRevokeAuthorizationInvalidatesRecord")
	_ = initChaincode(stub, [][]byte{})

	authorizationID := publishSampleAuthorization(t, stub, sampleResourceID, sampleGranteeDid, 3600)

	// Revoke and expect the response status to be OK
	resp := stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), []byte(authorizationID)})
	expectResponseStatusOK(t, &resp)

	// The record should now be invalid for the grantee
	isValid, err := invokeIsAuthorizationValid(stub, authorizationID, sampleGranteeDid)
	expectEqual(t, nil, err)
	expectEqual(t, false, isValid)

	// The record itself is kept with the revoked flag set
	record := authorization.AuthorizationRecord{}
	if err := json.Unmarshal(stub.State[getKeyForAuthorization(authorizationID)], &record); err != nil {
		testLogger.Infof("Cannot read stored authorization record: %v\n", err)
		t.FailNow()
	}
	expectEqual(t, true, record.Revoked)

	// A second revocation is a no-op and expect the response status to be OK
	resp = stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), []byte(authorizationID)})
	expectResponseStatusOK(t, &resp)

	// Revoking an unknown authorization ID and expect a `codeNotFound`
	resp = stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), []byte("no-such-authorization")})
	expectResponseStatusERROR(t, &resp)
	expectStringEndsWith(t, errorcode.CodeNotFound, resp.Message)
}

func TestGetAuthorization(t *testing.T) {
	targetFunction := "getAuthorization"

	stub := createMockStub(t, "TestGetAuthorization")
	_ = initChaincode(stub, [][]byte{})

	authorizationID := publishSampleAuthorization(t, stub, sampleResourceID, sampleGranteeDid, 3600)

	// Get the record and check the parsed contents
	resp := stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), []byte(authorizationID)})
	expectResponseStatusOK(t, &resp)

	record := authorization.AuthorizationRecord{}
	if err := json.Unmarshal(resp.Payload, &record); err != nil {
		testLogger.Infof("Cannot parse the returned authorization record: %v\n", err)
		t.FailNow()
	}
	expectEqual(t, authorizationID, record.AuthorizationID)
	expectEqual(t, sampleGranteeDid, record.GranteeDid)

	// Getting an unknown authorization ID and expect a `codeNotFound`
	resp = stub.MockInvoke(uuid.NewString(), [][]byte{[]byte(targetFunction), []byte("no-such-authorization")})
	expectResponseStatusERROR(t, &resp)
	expectStringEndsWith(t, errorcode.CodeNotFound, resp.Message)
}
