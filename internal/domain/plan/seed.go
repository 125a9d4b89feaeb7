package plan

// DefaultCatalog is inserted on first start when the plans table is empty.
func DefaultCatalog() []Plan {
	return []Plan{
		{Name: "Unlimited Plan", Operator: "Airtel", Price: 29900, Data: "2GB/day", Validity: 28, Popular: true, Category: "unlimited", Benefits: "Unlimited Voice, 100 SMS/day, Free Roaming"},
		{Name: "Smart Recharge", Operator: "Airtel", Price: 19900, Data: "1.5GB/day", Validity: 28, Popular: true, Category: "unlimited", Benefits: "Unlimited Voice, 100 SMS/day, Free Roaming"},
		{Name: "Max Plan", Operator: "Airtel", Price: 49900, Data: "3GB/day", Validity: 56, Category: "unlimited", Benefits: "Unlimited Voice, 100 SMS/day, Disney+ Hotstar"},
		{Name: "International Roaming", Operator: "Airtel", Price: 299900, Data: "5GB", Validity: 30, Category: "international", Benefits: "Roaming in 40+ countries, 100 mins incoming"},
		{Name: "Data Booster", Operator: "Jio", Price: 9800, Data: "12GB", Validity: 28, Category: "data", Benefits: "Data Only, No Voice/SMS"},
		{Name: "Weekend Data", Operator: "Jio", Price: 5800, Data: "4GB", Validity: 7, Category: "data", Benefits: "Data Only, Weekend Special"},
		{Name: "Unlimited Plus", Operator: "Jio", Price: 34900, Data: "2.5GB/day", Validity: 28, Popular: true, Category: "unlimited", Benefits: "Unlimited Voice, 100 SMS/day, JioTV, JioCinema"},
		{Name: "Annual Plan", Operator: "Jio", Price: 299900, Data: "2.5GB/day", Validity: 365, Category: "long-term", Benefits: "Unlimited Voice, 100 SMS/day, JioTV, JioCloud"},
		{Name: "Quick Recharge", Operator: "Vi", Price: 9900, Data: "200MB", Validity: 28, Category: "talktime", Benefits: "Talktime Rs 99, Local/STD calls"},
		{Name: "Vi Hero Unlimited", Operator: "Vi", Price: 35900, Data: "2GB/day", Validity: 28, Category: "unlimited", Benefits: "Unlimited Voice, Weekend Data Rollover, Binge All Night"},
		{Name: "Student Special", Operator: "Vi", Price: 14900, Data: "1GB/day", Validity: 24, Category: "special", Benefits: "Unlimited Voice, 100 SMS/day, Student Offer"},
		{Name: "Budget Plan", Operator: "BSNL", Price: 10700, Data: "3GB", Validity: 35, Category: "talktime", Benefits: "200 mins Voice, Free PRBT"},
		{Name: "BSNL Unlimited", Operator: "BSNL", Price: 18700, Data: "2GB/day", Validity: 28, Category: "unlimited", Benefits: "Unlimited Voice, 100 SMS/day"},
	}
}
