// genkey mints an Ed25519 keypair for a backend caller. Put the public key
// in the service's CALLER_KEYS and keep the private key with the caller.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

func main() {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Public key (base64, for CALLER_KEYS):  %s\n", base64.StdEncoding.EncodeToString(pub))
	fmt.Printf("Private key (base64, for the caller):  %s\n", base64.StdEncoding.EncodeToString(priv))
}
