package security

import (
	"testing"
	"time"
)

// TestValidateURL_AllowedURLs は安全なURLが許可されることを検証する。
func TestValidateURL_AllowedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "httpsの公開URL", url: "https://example.com/avatar.png"},
		{name: "httpの公開URL", url: "http://example.com/avatar.png"},
		{name: "パブリックIPアドレス", url: "https://93.184.216.34/avatar.png"},
		{name: "クエリパラメータ付きURL", url: "https://lh3.googleusercontent.com/a/photo?sz=200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
			}
		})
	}
}

// TestValidateURL_BlockedURLs は危険なURLが拒否されることを検証する。
func TestValidateURL_BlockedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "空文字列", url: ""},
		{name: "fileスキーム", url: "file:///etc/passwd"},
		{name: "ftpスキーム", url: "ftp://example.com/avatar.png"},
		{name: "javascriptスキーム", url: "javascript:alert(1)"},
		{name: "ホストなし", url: "https:///avatar.png"},
		{name: "localhost", url: "http://localhost/avatar.png"},
		{name: "大文字のLOCALHOST", url: "http://LOCALHOST/avatar.png"},
		{name: "ループバックIP", url: "http://127.0.0.1/avatar.png"},
		{name: "ループバック範囲内の別IP", url: "http://127.1.2.3/avatar.png"},
		{name: "プライベートIP 10系", url: "http://10.0.0.5/avatar.png"},
		{name: "プライベートIP 172系", url: "http://172.16.0.1/avatar.png"},
		{name: "プライベートIP 192系", url: "http://192.168.1.1/avatar.png"},
		{name: "クラウドメタデータIP", url: "http://169.254.169.254/latest/meta-data/"},
		{name: "カレントネットワーク", url: "http://0.0.0.0/avatar.png"},
		{name: "IPv6ループバック", url: "http://[::1]/avatar.png"},
		{name: "IPv6リンクローカル", url: "http://[fe80::1]/avatar.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want an error", tt.url)
			}
		})
	}
}

// TestNewSafeClient_ReturnsConfiguredClient はHTTPクライアントが生成されることを検証する。
func TestNewSafeClient_ReturnsConfiguredClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5*time.Second, 1<<20)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
}

// TestSSRFGuardInterface はSSRFGuardServiceインターフェースの適合を検証する。
func TestSSRFGuardInterface(t *testing.T) {
	var _ SSRFGuardService = NewSSRFGuard()
}
