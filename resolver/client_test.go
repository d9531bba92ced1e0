package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDNSClient mirrors the teacher's mock for dnsClient.
type MockDNSClient struct {
	mock.Mock
}

func (m *MockDNSClient) ExchangeContext(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	args := m.Called(ctx, msg, addr)
	reply, _ := args.Get(0).(*dns.Msg)
	return reply, args.Get(1).(time.Duration), args.Error(2)
}

func TestClient_Exchange_ValidDNSMessage(t *testing.T) {
	c := NewClient("192.0.2.53")

	mockClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		return mockClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	expectedResponse := new(dns.Msg)
	expectedDuration := 10 * time.Millisecond

	mockClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").Return(expectedResponse, expectedDuration, nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	assert.Equal(t, expectedResponse, result.Msg)
	assert.Equal(t, expectedDuration, result.Duration)
	mockClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}

func TestClient_SendAsync_NilMessage(t *testing.T) {
	c := NewClient("192.0.2.53")
	ch := c.SendAsync(context.Background(), nil, nil)
	result := <-ch
	assert.ErrorIs(t, result.Err, ErrNilMessageSentToExchange)
}

func TestClient_Exchange_UDPErrorFallsBackToTCP(t *testing.T) {
	c := NewClient("192.0.2.53")

	udpClient := new(MockDNSClient)
	tcpClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		if protocol == "udp" {
			return udpClient
		}
		return tcpClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	expectedResponse := new(dns.Msg)
	expectedDuration := 10 * time.Millisecond

	udpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return((*dns.Msg)(nil), time.Duration(0), errors.New("mock UDP error")).Once()
	tcpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return(expectedResponse, expectedDuration, nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	assert.Equal(t, expectedResponse, result.Msg)
	udpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
	tcpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}

func TestClient_Exchange_TruncatedResponseFallsBackToTCP(t *testing.T) {
	c := NewClient("192.0.2.53")

	udpClient := new(MockDNSClient)
	tcpClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		if protocol == "udp" {
			return udpClient
		}
		return tcpClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	truncated := &dns.Msg{MsgHdr: dns.MsgHdr{Truncated: true}}
	expectedResponse := new(dns.Msg)

	udpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return(truncated, time.Duration(0), nil).Once()
	tcpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return(expectedResponse, 10*time.Millisecond, nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	assert.Equal(t, expectedResponse, result.Msg)
	udpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
	tcpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}

func TestClient_Exchange_TruncatedResponseAcceptedUnderAcceptPolicy(t *testing.T) {
	c := NewClient("192.0.2.53")
	c.SetTruncationPolicy(TruncationPolicyAccept)

	udpClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		return udpClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	truncated := &dns.Msg{MsgHdr: dns.MsgHdr{Truncated: true}}
	udpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return(truncated, time.Duration(0), nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	assert.True(t, result.Truncated())
	udpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}

func TestClient_Exchange_TCPOnlyModeSkipsUDP(t *testing.T) {
	c := NewClient("192.0.2.53")
	c.SetTCPMode(TCPModeTCPOnly)

	tcpClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		if protocol != "tcp" {
			t.Fatalf("expected only tcp to be used, got %s", protocol)
		}
		return tcpClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	expectedResponse := new(dns.Msg)
	tcpClient.On("ExchangeContext", ctx, mock.Anything, "192.0.2.53:53").
		Return(expectedResponse, 10*time.Millisecond, nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	tcpClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}

func TestClient_Exchange_IPv6AddressFormatting(t *testing.T) {
	c := NewClient("2001:db8::1")

	mockClient := new(MockDNSClient)
	c.dnsClientFactory = func(protocol string, timeout time.Duration) dnsClient {
		return mockClient
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com."), dns.TypeA)
	ctx := context.Background()

	expectedResponse := new(dns.Msg)
	mockClient.On("ExchangeContext", ctx, mock.Anything, "[2001:db8::1]:53").
		Return(expectedResponse, 10*time.Millisecond, nil).Once()

	result := c.exchange(ctx, msg)

	assert.NoError(t, result.Err)
	mockClient.AssertNumberOfCalls(t, "ExchangeContext", 1)
}
