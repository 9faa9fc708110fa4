package store

const (
	createWhitelistEntry = `INSERT INTO whitelist_entries (identifier, identifier_type, full_name, role, supervisor_id, notes)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id, identifier, identifier_type, full_name, role, supervisor_id, is_activated, notes, created_at, updated_at;`

	getWhitelistEntryByID = `SELECT id, identifier, identifier_type, full_name, role, supervisor_id, is_activated, notes, created_at, updated_at
    FROM whitelist_entries
    WHERE id = $1;`

	getWhitelistEntryByIdentifier = `SELECT id, identifier, identifier_type, full_name, role, supervisor_id, is_activated, notes, created_at, updated_at
    FROM whitelist_entries
    WHERE identifier = $1;`

	listWhitelistEntries = `SELECT id, identifier, identifier_type, full_name, role, supervisor_id, is_activated, notes, created_at, updated_at
    FROM whitelist_entries
    ORDER BY created_at DESC;`

	activateWhitelistEntry = `UPDATE whitelist_entries
    SET is_activated = TRUE, updated_at = NOW()
    WHERE id = $1 AND is_activated = FALSE;`

	createActivationCode = `INSERT INTO activation_codes (whitelist_id, code_hash, status, expires_at, max_attempts)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at;`

	getActivationCodeByID = `SELECT id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at
    FROM activation_codes
    WHERE id = $1;`

	getActiveCodeByWhitelistID = `SELECT id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at
    FROM activation_codes
    WHERE whitelist_id = $1 AND status = 'active';`

	getLatestCodeByWhitelistID = `SELECT id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at
    FROM activation_codes
    WHERE whitelist_id = $1
    ORDER BY created_at DESC
    LIMIT 1;`

	markCodeUsed = `UPDATE activation_codes
    SET status = 'used', used_at = $2, updated_at = NOW()
    WHERE id = $1 AND status = 'active';`

	// recordFailedAttempt counts the failure and locks the code in the same
	// statement, so two concurrent wrong guesses can never push the counter
	// past the budget without one of them observing the locked state.
	recordFailedAttempt = `UPDATE activation_codes
    SET failed_attempts = failed_attempts + 1,
        status = CASE WHEN failed_attempts + 1 >= max_attempts THEN 'locked' ELSE status END,
        updated_at = NOW()
    WHERE id = $1 AND status = 'active'
    RETURNING id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at;`

	revokeActivationCode = `UPDATE activation_codes
    SET status = 'revoked', revoked_at = $2, revoke_reason = $3, updated_at = NOW()
    WHERE id = $1 AND status = 'active'
    RETURNING id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at;`

	markCodeExpired = `UPDATE activation_codes
    SET status = 'expired', updated_at = NOW()
    WHERE id = $1 AND status = 'active';`

	extendCodeExpiry = `UPDATE activation_codes
    SET expires_at = $2, updated_at = NOW()
    WHERE id = $1 AND status = 'active'
    RETURNING id, whitelist_id, code_hash, status, expires_at, used_at, revoked_at, revoke_reason, failed_attempts, max_attempts, email_delivery_id, created_at, updated_at;`

	setCodeEmailDelivery = `UPDATE activation_codes
    SET email_delivery_id = $2, updated_at = NOW()
    WHERE id = $1;`

	expireOverdueCodes = `UPDATE activation_codes
    SET status = 'expired', updated_at = NOW()
    WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < $1
    RETURNING id;`

	appendAuditEntry = `INSERT INTO activation_audit_log (id, activation_code_id, event_type, success, requester_ip, failure_reason, metadata)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING created_at;`
)
