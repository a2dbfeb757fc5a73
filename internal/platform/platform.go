// Package platform implements the record source/sink contract for the
// supported e-commerce platforms.
package platform

import (
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/secrets"
)

// New resolves the connection's credentials and constructs the binding for
// its platform type. The type tag is dispatched once, here.
func New(conn *models.PlatformConnection, sec *secrets.Manager) (connector.Client, error) {
	switch conn.PlatformType {
	case models.Shopify:
		token, err := sec.Decrypt(conn.AccessToken)
		if err != nil {
			return nil, &connector.ConnectionError{Side: "platform", Err: err}
		}
		return NewShopify(conn.ShopURL, token), nil
	case models.WooCommerce:
		key, err := sec.Decrypt(conn.APIKey)
		if err != nil {
			return nil, &connector.ConnectionError{Side: "platform", Err: err}
		}
		secret, err := sec.Decrypt(conn.APISecret)
		if err != nil {
			return nil, &connector.ConnectionError{Side: "platform", Err: err}
		}
		return NewWooCommerce(conn.ShopURL, key, secret), nil
	default:
		return nil, &connector.UnsupportedPlatformError{Platform: string(conn.PlatformType)}
	}
}
