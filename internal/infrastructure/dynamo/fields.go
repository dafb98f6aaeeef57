package dynamo

// DynamoDB attribute names used in update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID           = "user_id"
	fieldEmail            = "email"
	fieldMetadata         = "metadata"
	fieldEmailConfirmedAt = "email_confirmed_at"
	fieldUpdatedAt        = "updated_at"
	fieldOwnerID          = "owner_id"

	indexEmail = "email-index"

	emailClaimPrefix = "email#"
)

// metadataPath addresses a single key inside the metadata map.
func metadataPath(key string) string {
	return fieldMetadata + "." + key
}
