// Package capsa implements the client-side cryptographic core of a secure
// content-delivery envelope format: a sender packages files and optional
// subject/body/structured fields into a "capsa" addressed to one or more
// recipient parties, each of whom can verify the sender's signature and
// unwrap the per-capsa content key with their own private key. A remote
// service stores and routes capsas but never observes plaintext or
// unwrapped key material - the envelope, not the server, is the
// confidentiality boundary.
//
// Basic usage:
//
//	built, err := capsa.Build(ctx, capsa.BuildInput{
//	    CreatorPartyID:       "alice",
//	    CreatorPrivateKeyPEM: alicePrivPEM,
//	    Payload: capsa.Payload{
//	        Files: []capsa.File{{Filename: "report.pdf", MimeType: "application/pdf", Data: data}},
//	    },
//	    Recipients: []string{"bob"},
//	    Directory:  directory,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decrypted, err := capsa.VerifyAndUnwrap(ctx, built.Capsa, bobPrivPEM,
//	    capsa.WithPartyID("bob"),
//	    capsa.WithExpectedCreatorKey(alicePubPEM),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer decrypted.ClearDeferred()()
package capsa
