package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbus-mining/poolclient/stratum"
)

func TestParseDialect(t *testing.T) {
	require.Equal(t, stratum.DialectStratum, ParseDialect("stratum"))
	require.Equal(t, stratum.DialectNRGProxy, ParseDialect("NRGProxy"))
	require.Equal(t, stratum.DialectEnergiStratum, ParseDialect(" EnergiStratum "))
	require.Equal(t, stratum.DialectUnknown, ParseDialect(""))
	require.Equal(t, stratum.DialectUnknown, ParseDialect("bogus"))
}

func TestCredentialedAddressesInsertsCredentials(t *testing.T) {
	c := &Config{Pool: PoolConfig{
		Addresses: []string{"stratum+tcp://pool.example:3333"},
		Username:  "account.worker1",
		Password:  "x",
	}}

	got := c.CredentialedAddresses()
	require.Equal(t, []string{"stratum+tcp://account.worker1:x@pool.example:3333"}, got)
}

func TestCredentialedAddressesLeavesExistingUserinfoAlone(t *testing.T) {
	c := &Config{Pool: PoolConfig{
		Addresses: []string{"stratum+tcp://other:y@pool.example:3333"},
		Username:  "account.worker1",
		Password:  "x",
	}}

	got := c.CredentialedAddresses()
	require.Equal(t, []string{"stratum+tcp://other:y@pool.example:3333"}, got)
}
