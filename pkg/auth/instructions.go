package auth

import (
	"fmt"
	"strings"
)

// ShowTokenGuide displays step-by-step instructions for creating a HubSpot
// private app access token.
func ShowTokenGuide() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("HUBSPOT PRIVATE APP TOKEN GUIDE")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()

	fmt.Println("This tool authenticates with a private app access token.")
	fmt.Println("To create one:")
	fmt.Println()

	fmt.Println("STEP 1: Open your HubSpot portal settings")
	fmt.Println("   - Settings > Integrations > Private Apps")
	fmt.Println()

	fmt.Println("STEP 2: Create a private app")
	fmt.Println("   - Name it, e.g. \"hubexport\"")
	fmt.Println("   - Under Scopes, grant read access to the CRM objects you")
	fmt.Println("     want to export: crm.objects.companies.read,")
	fmt.Println("     crm.objects.contacts.read and the engagement scopes for")
	fmt.Println("     notes, tasks and calls")
	fmt.Println()

	fmt.Println("STEP 3: Copy the access token")
	fmt.Println("   - It starts with \"pat-\"")
	fmt.Println("   - Run: hubexport auth login")
	fmt.Println("   - Or set it in the environment: HUBSPOT_ACCESS_TOKEN")
	fmt.Println()

	fmt.Println("The token is stored in your system keychain when available,")
	fmt.Println("otherwise in an encrypted file under your config directory.")
	fmt.Println(strings.Repeat("=", 72))
}
