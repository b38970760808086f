// Package token builds signed development JWTs from environment-supplied
// claims.
package token

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the application and employee identity baked into a token.
type Claims struct {
	ApplicationID           string
	ApplicationName         string
	ApplicationHostname     string
	OrgID                   string
	CustomerGUID            string
	EmployeeID              string
	EmployeeFullName        string
	EmployeeInitials        string
	EmployeeBirthNumber     string
	EmployeeRoleName        string
	EmployeeRoleID          string
	PositionID              string
	OrgUnits                string
	AccessPoints            string
	EmployeeAffiliationsIDs string
	EmployeeGroupsIDs       string
	EmployeeTeamsIDs        string
	Scope                   []string
}

var requiredEnv = []string{
	"JWT_APPLICATION_ID",
	"JWT_APPLICATION_NAME",
	"JWT_APPLICATION_HOSTNAME",
	"JWT_ORG_ID",
	"JWT_CUSTOMER_GUID",
	"JWT_EMPLOYEE_ID",
	"JWT_SCOPE",
}

// ClaimsFromEnv loads the claims from JWT_* environment variables and
// reports every missing required variable at once.
func ClaimsFromEnv() (*Claims, error) {
	var missing []string
	for _, name := range requiredEnv {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return &Claims{
		ApplicationID:           os.Getenv("JWT_APPLICATION_ID"),
		ApplicationName:         os.Getenv("JWT_APPLICATION_NAME"),
		ApplicationHostname:     os.Getenv("JWT_APPLICATION_HOSTNAME"),
		OrgID:                   os.Getenv("JWT_ORG_ID"),
		CustomerGUID:            os.Getenv("JWT_CUSTOMER_GUID"),
		EmployeeID:              os.Getenv("JWT_EMPLOYEE_ID"),
		EmployeeFullName:        os.Getenv("JWT_EMPLOYEE_FULL_NAME"),
		EmployeeInitials:        os.Getenv("JWT_EMPLOYEE_INITIALS"),
		EmployeeBirthNumber:     os.Getenv("JWT_EMPLOYEE_BIRTH_NUMBER"),
		EmployeeRoleName:        os.Getenv("JWT_EMPLOYEE_ROLE_NAME"),
		EmployeeRoleID:          os.Getenv("JWT_EMPLOYEE_ROLE_ID"),
		PositionID:              os.Getenv("JWT_POSITION_ID"),
		OrgUnits:                os.Getenv("JWT_ORG_UNITS"),
		AccessPoints:            os.Getenv("JWT_ACCESS_POINTS"),
		EmployeeAffiliationsIDs: os.Getenv("JWT_EMPLOYEE_AFFILIATIONS_IDS"),
		EmployeeGroupsIDs:       os.Getenv("JWT_EMPLOYEE_GROUPS_IDS"),
		EmployeeTeamsIDs:        os.Getenv("JWT_EMPLOYEE_TEAMS_IDS"),
		Scope:                   strings.Split(os.Getenv("JWT_SCOPE"), ","),
	}, nil
}

// Generate signs the claims with HS256. The secret is base64-encoded; it is
// decoded before signing. Tokens expire 24 hours after now.
func Generate(claims *Claims, encodedSecret string, now time.Time) (string, error) {
	key, err := base64.StdEncoding.DecodeString(encodedSecret)
	if err != nil {
		return "", fmt.Errorf("secret is not valid base64: %w", err)
	}

	mapClaims := jwt.MapClaims{
		"exp":                     jwt.NewNumericDate(now.Add(24 * time.Hour)),
		"applicationId":           claims.ApplicationID,
		"applicationName":         claims.ApplicationName,
		"applicationHostname":     claims.ApplicationHostname,
		"orgId":                   claims.OrgID,
		"customerGuid":            claims.CustomerGUID,
		"employeeId":              claims.EmployeeID,
		"employeeFullName":        claims.EmployeeFullName,
		"employeeInitials":        claims.EmployeeInitials,
		"employeeBirthNumber":     claims.EmployeeBirthNumber,
		"employeeRoleName":        claims.EmployeeRoleName,
		"employeeRoleId":          claims.EmployeeRoleID,
		"positionId":              claims.PositionID,
		"orgUnits":                claims.OrgUnits,
		"accessPoints":            claims.AccessPoints,
		"employeeAffiliationsIds": claims.EmployeeAffiliationsIDs,
		"employeeGroupsIds":       claims.EmployeeGroupsIDs,
		"employeeTeamsIds":        claims.EmployeeTeamsIDs,
		"scope":                   claims.Scope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
