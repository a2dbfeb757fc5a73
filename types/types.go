package types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ProfileRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	IsActive     *bool  `json:"is_active"`
}

type PlatformConnectRequest struct {
	BusinessProfileID uint   `json:"business_profile_id"`
	Name              string `json:"name"`
	PlatformType      string `json:"platform_type"` // shopify | woocommerce
	ShopURL           string `json:"shop_url"`
	APIKey            string `json:"api_key"`
	APISecret         string `json:"api_secret"`
	AccessToken       string `json:"access_token"`
}

type DBConnectRequest struct {
	BusinessProfileID uint           `json:"business_profile_id"`
	Name              string         `json:"name"`
	Engine            string         `json:"engine"` // postgres, mysql, mssql, sqlite
	Host              string         `json:"host"`
	Port              int            `json:"port"`
	Database          string         `json:"database"`
	Username          string         `json:"username"`
	Password          string         `json:"password"`
	Params            map[string]any `json:"params"`
}

type FieldMappingRequest struct {
	PlatformConnectionID uint              `json:"platform_connection_id"`
	DatabaseConnectionID uint              `json:"database_connection_id"`
	Name                 string            `json:"name"`
	DBTable              string            `json:"db_table"`
	DBFields             map[string]any    `json:"db_fields"`
	PlatformResource     string            `json:"platform_resource"`
	PlatformFields       map[string]any    `json:"platform_fields"`
	SyncDirection        string            `json:"sync_direction"`
	SyncIntervalMinutes  int               `json:"sync_interval_minutes"`
	TransformationRules  map[string]any    `json:"transformation_rules"`
	IsActive             *bool             `json:"is_active"`
}

type ManualSyncResponse struct {
	SyncLogID         string `json:"sync_log_id"`
	Status            string `json:"status"`
	RecordsProcessed  int    `json:"records_processed"`
	RecordsSuccessful int    `json:"records_successful"`
	RecordsFailed     int    `json:"records_failed"`
	Summary           string `json:"summary"`
}
