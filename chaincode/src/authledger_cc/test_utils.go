package main

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-protos-go/peer"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var testLogger = log.StandardLogger()

// Check if the actual value is equal to the expected value.
func expectEqual(t *testing.T, expected interface{}, actual interface{}) {
	isEqual := assert.Equal(t, expected, actual)
	if !isEqual {
		testLogger.Infof("Value was '%v'. Expecting '%v'\n", actual, expected)
		t.FailNow()
	}
}

// Check if the string ends with the specified phrases.
func expectStringEndsWith(t *testing.T, expectedSuffix string, actual string) {
	isCorrectEnding := strings.HasSuffix(actual, expectedSuffix)
	if !isCorrectEnding {
		testLogger.Infof("Value was '%v'. Expecting to end with '%v'\n", actual, expectedSuffix)
		t.FailNow()
	}
}

// Check if the response state is OK.
func expectResponseStatusOK(t *testing.T, resp *peer.Response) {
	if resp.Status != shim.OK {
		testLogger.Infof("Response status was ERROR with message '%v'. Expecting response status to be OK\n", resp.Message)
		t.FailNow()
	}
}

// Check if the response state is ERROR.
func expectResponseStatusERROR(t *testing.T, resp *peer.Response) {
	if resp.Status != shim.ERROR {
		testLogger.Infof("Expecting response status to be ERROR\n")
		t.FailNow()
	}
}

// Creates a MockStub bound to the chaincode struct AuthLedgerCC.
func createMockStub(t *testing.T, stubName string) *shimtest.MockStub {
	cc := new(AuthLedgerCC)
	return shimtest.NewMockStub(stubName, cc)
}

// Invokes `Init` on the mock stub with a random transaction ID.
func initChaincode(stub *shimtest.MockStub, args [][]byte) peer.Response {
	return stub.MockInit(uuid.NewString(), args)
}
