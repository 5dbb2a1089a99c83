package main

import (
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"os"
	"path"

	"github.com/XiaoYao-austin/ppks"
	"github.com/pkg/errors"
	"github.com/tjfoc/gmsm/x509"
)

func generateKeys(dirKeys string, parties []string) error {
	// Exit if the dir exists
	if _, err := os.Stat(dirKeys); os.IsExist(err) {
		return fmt.Errorf("the sm2 keys are already generated. Delete the folder first before running again")
	}

	// Create the dir
	os.Mkdir(dirKeys, 0755)

	for _, party := range parties {
		// Generate keys
		privKey, err := ppks.GenPrivKey()
		if err != nil {
			return errors.Wrapf(err, "cannot generate a private key for '%v'", party)
		}

		pubKey := privKey.PublicKey

		// Create a directory for the party
		if _, err = os.Stat(path.Join(dirKeys, party)); os.IsNotExist(err) {
			os.Mkdir(path.Join(dirKeys, party), 0755)
		}

		// Save the private key and the public key to files
		// Private key
		privKeyDer, err := x509.MarshalSm2UnecryptedPrivateKey(privKey)
		if err != nil {
			return errors.Wrapf(err, "cannot save the private key for '%v'", party)
		}
		privKeyPemBlock := pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: privKeyDer,
		}
		privKeyPem := pem.EncodeToMemory(&privKeyPemBlock)
		ioutil.WriteFile(path.Join(dirKeys, party, "sk"), privKeyPem, 0644)

		// Public key
		pubKeyDer, err := x509.MarshalSm2PublicKey(&pubKey)
		if err != nil {
			return errors.Wrapf(err, "cannot save the public key for '%v'", party)
		}
		pubKeyPemBlock := pem.Block{
			Type:  "PUBLIC KEY",
			Bytes: pubKeyDer,
		}
		pubKeyPem := pem.EncodeToMemory(&pubKeyPemBlock)
		ioutil.WriteFile(path.Join(dirKeys, party, party+".pem"), pubKeyPem, 0644)
	}

	return nil
}
