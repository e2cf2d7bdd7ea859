// Package fakebank is an in-memory stand-in for the banking API the terminal
// talks to. It reproduces the routes, status codes and messages of the real
// backend closely enough for end-to-end tests of the service facades and the
// session controller: bcrypt-hashed PINs, a JWT session cookie issued by
// /cards/auth, and the card block after three wrong PINs.
//
// Usage:
//
//	bank := fakebank.New(logger)
//	require.NoError(t, bank.Add(fakebank.Holder{
//	    AccountID: 7, Card: "1234567890", PIN: "1111",
//	    FirstName: "Ada", LastName: "Lovelace", CardType: "debit",
//	    Balance: decimal.NewFromInt(100),
//	}))
//	server := fakebank.NewServer(t, bank)
package fakebank
