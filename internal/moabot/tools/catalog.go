// Package tools is the declarative tool catalogue: every operation the
// intent resolver may propose, with its Korean description, its JSON Schema
// for arguments, and the policy sets consulted before dispatch.
//
// The catalogue is data, not behaviour — handlers live in the dispatch
// package and are looked up by the same names.
package tools

import "encoding/json"

// Definition describes one callable tool.
type Definition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// dateSchema matches an ISO calendar date.
const datePattern = `^\\d{4}-\\d{2}-\\d{2}$`

// AuthExempt lists the tools callable without a credential. Everything else
// requires the Authorization header to be present before dispatch; the
// ledger still enforces it authoritatively.
var AuthExempt = map[string]bool{
	"sign_in": true,
}

// RequiresAuth reports whether name needs a credential before dispatch.
func RequiresAuth(name string) bool {
	return !AuthExempt[name]
}

// BatchOnly lists the tools whose argument payload is a transaction array;
// the dispatcher processes items individually and never rolls back.
var BatchOnly = map[string]bool{
	"create_expense_batch": true,
	"create_income_batch":  true,
}

// Catalogue returns every tool definition. The slice is rebuilt per call so
// callers can safely reorder or filter it.
func Catalogue() []Definition {
	return []Definition{
		{
			Name: "create_expense",
			Description: "사용자가 지출을 '추가/기록/등록'하길 원할 때 호출한다. " +
				"예: '어제 외식 12000원 썼어', '교통비 1500원 추가해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "날짜(YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "금액(원). 0보다 커야 함", "minimum": 1},
					"category": {"type": "string", "description": "카테고리", "enum": ["외식", "배달", "교통", "쇼핑", "생활", "기타"]},
					"memo": {"type": "string", "description": "메모(선택)", "maxLength": 100}
				},
				"required": ["date", "amount", "category"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "list_expenses",
			Description: "사용자가 지출을 '조회/목록/최근 내역'으로 보길 원할 때 호출한다. " +
				"예: '최근 지출 5개 보여줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "가져올 개수(기본 10, 최대 50)", "minimum": 1, "maximum": 50}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name: "top_expense_weekday_avg",
			Description: "기간(이번 달/올해 등)별로 어느 요일에 평균 지출이 가장 큰지 확인할 때 호출한다. " +
				"예: '이번 달에 가장 지출이 많은 요일이 언제야?'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"scope": {"type": "string", "enum": ["month", "year"], "description": "기간 단위"},
					"month": {"type": "string", "description": "scope=month일 때 사용할 월(YYYY-MM). 없으면 현재 월", "pattern": "^\\d{4}-\\d{2}$"},
					"year": {"type": "string", "description": "scope=year일 때 사용할 연도(YYYY). 없으면 현재 연", "pattern": "^\\d{4}$"}
				},
				"required": ["scope"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "delete_expense",
			Description: "사용자가 지출 ID로 특정 지출을 삭제하길 원할 때 호출한다. " +
				"ID가 없고 날짜만 아는 경우에는 delete_expense_by_chat을 사용한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"expense_id": {"type": "integer", "description": "삭제할 지출 ID", "minimum": 1}
				},
				"required": ["expense_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_expense",
			Description: "사용자가 지출 ID로 특정 지출을 '수정/변경'하길 원할 때 호출한다. " +
				"expense_id가 없으면 먼저 목록을 조회해 ID를 확인해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"expense_id": {"type": "integer", "minimum": 1, "description": "수정할 지출 ID"},
					"date": {"type": "string", "pattern": "` + datePattern + `", "description": "날짜(YYYY-MM-DD)"},
					"amount": {"type": "integer", "minimum": 1, "description": "금액(원)"},
					"category": {"type": "string", "enum": ["외식", "배달", "교통", "쇼핑", "생활", "기타"], "description": "카테고리"},
					"memo": {"type": "string", "maxLength": 100, "description": "메모(선택)"}
				},
				"required": ["expense_id", "date", "amount", "category"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "delete_expense_by_chat",
			Description: "날짜 기준으로 지출을 삭제한다. 금액(amount)과 메모(memo)는 선택 사항이다. " +
				"여러 후보가 있으면 번호가 붙은 후보 목록을 사용자에게 보여준다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "삭제할 지출의 날짜 (YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "삭제할 지출 금액 (선택)", "minimum": 0},
					"memo": {"type": "string", "description": "삭제할 지출 메모 (선택)", "maxLength": 100}
				},
				"required": ["date"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_expense_by_chat",
			Description: "사용자가 지출을 '수정/변경'하고 싶다고 말하면 무조건 먼저 호출한다. " +
				"아직 수정할 내용이 없어도 호출한다. 날짜/금액/메모 중 하나 이상으로 후보를 찾는다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "수정할 지출의 날짜 (선택) (YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "수정할 지출 금액 (선택)", "minimum": 1},
					"memo": {"type": "string", "description": "수정할 지출 메모 (선택)", "maxLength": 100}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_expense_by_chat_confirm",
			Description: "이전에 반환된 지출 수정 후보 중 하나를 선택해 수정한다. " +
				"candidateIndex는 1부터 시작하고 newData에는 수정할 필드만 포함한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"candidateIndex": {"type": "integer", "description": "수정할 후보 번호 (1부터 시작)", "minimum": 1},
					"newData": {
						"type": "object",
						"properties": {
							"date": {"type": "string", "pattern": "` + datePattern + `", "description": "새 날짜 (선택)"},
							"amount": {"type": "integer", "minimum": 1, "description": "새 금액 (선택)"},
							"memo": {"type": "string", "maxLength": 100, "description": "새 메모 (선택)"}
						},
						"required": [],
						"additionalProperties": false
					}
				},
				"required": ["candidateIndex", "newData"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "create_income",
			Description: "사용자가 수입을 '추가/기록/등록'하길 원할 때 호출한다. " +
				"예: '월급 300만원 들어왔어', '용돈 5만원 받았어'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "날짜(YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "금액(원). 0보다 커야 함", "minimum": 1},
					"category": {"type": "string", "enum": ["월급", "용돈", "부수입", "기타"]},
					"memo": {"type": "string", "description": "메모(선택)", "maxLength": 100}
				},
				"required": ["date", "amount", "category"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_incomes",
			Description: "사용자가 수입을 '조회/목록/최근 내역'으로 보길 원할 때 호출한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "가져올 개수(기본 10, 최대 50)", "minimum": 1, "maximum": 50}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name: "delete_income_by_chat",
			Description: "날짜 기준으로 수입을 삭제한다. 금액과 메모는 선택 사항이다. " +
				"여러 후보가 있으면 번호가 붙은 후보 목록을 사용자에게 보여준다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "삭제할 수입의 날짜 (YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "삭제할 수입 금액 (선택)", "minimum": 0},
					"memo": {"type": "string", "description": "삭제할 수입 메모 (선택)", "maxLength": 100}
				},
				"required": ["date"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_income_by_chat",
			Description: "사용자가 수입을 '수정/변경'하고 싶다고 말하면 무조건 먼저 호출한다. " +
				"아직 수정할 내용이 없어도 호출한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "수정할 수입의 날짜 (선택) (YYYY-MM-DD)", "pattern": "` + datePattern + `"},
					"amount": {"type": "integer", "description": "수정할 수입 금액 (선택)", "minimum": 1},
					"memo": {"type": "string", "description": "수정할 수입 메모 (선택)", "maxLength": 100}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_income_by_chat_confirm",
			Description: "이전에 반환된 수입 수정 후보 중 하나를 선택해 수정한다. " +
				"candidateIndex는 1부터 시작하고 newData에는 수정할 필드만 포함한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"candidateIndex": {"type": "integer", "description": "수정할 후보 번호 (1부터 시작)", "minimum": 1},
					"newData": {
						"type": "object",
						"properties": {
							"date": {"type": "string", "pattern": "` + datePattern + `", "description": "새 날짜 (선택)"},
							"amount": {"type": "integer", "minimum": 1, "description": "새 금액 (선택)"},
							"memo": {"type": "string", "maxLength": 100, "description": "새 메모 (선택)"}
						},
						"required": [],
						"additionalProperties": false
					}
				},
				"required": ["candidateIndex", "newData"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "create_expense_batch",
			Description: "사용자가 여러 지출을 한 번에 등록하려고 할 때 호출한다. " +
				"각 항목은 실패해도 전체가 롤백되지 않으며, 성공/실패 결과를 함께 반환한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"transactions": {
						"type": "array",
						"description": "등록할 지출 목록",
						"items": {
							"type": "object",
							"properties": {
								"date": {"type": "string", "pattern": "` + datePattern + `", "description": "날짜(YYYY-MM-DD)"},
								"amount": {"type": "integer", "minimum": 1, "description": "금액(원)"},
								"category": {"type": "string", "enum": ["외식", "배달", "교통", "쇼핑", "생활", "기타"]},
								"memo": {"type": "string", "maxLength": 100, "description": "메모(선택)"}
							},
							"required": ["date", "amount", "category"],
							"additionalProperties": false
						},
						"minItems": 1
					}
				},
				"required": ["transactions"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "create_income_batch",
			Description: "사용자가 여러 수입을 한 번에 등록하려고 할 때 호출한다. " +
				"각 항목은 개별 처리되며 실패 내역도 함께 반환된다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"transactions": {
						"type": "array",
						"description": "등록할 수입 목록",
						"items": {
							"type": "object",
							"properties": {
								"date": {"type": "string", "pattern": "` + datePattern + `", "description": "날짜(YYYY-MM-DD)"},
								"amount": {"type": "integer", "minimum": 1, "description": "금액(원)"},
								"category": {"type": "string", "enum": ["월급", "용돈", "부수입", "기타"]},
								"memo": {"type": "string", "maxLength": 100, "description": "메모(선택)"}
							},
							"required": ["date", "amount", "category"],
							"additionalProperties": false
						},
						"minItems": 1
					}
				},
				"required": ["transactions"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "get_top_expense_category",
			Description: "특정 기간 동안 가장 많이 지출한 카테고리를 알고 싶어할 때 호출한다. " +
				"지출 전용이며 수입은 포함하지 않는다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"period": {"type": "string", "description": "조회 기간", "enum": ["day", "week", "month", "year"]},
					"date": {"type": "string", "description": "기준 날짜(YYYY-MM-DD). 없으면 오늘", "pattern": "` + datePattern + `"}
				},
				"required": ["period"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "get_expense_summary",
			Description: "사용자가 지출 합계를 알고 싶어할 때 호출한다. 예: '이번 달 지출 총액 얼마야?'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"period": {"type": "string", "description": "조회 기간", "enum": ["day", "week", "month", "year"]},
					"date": {"type": "string", "description": "기준 날짜(YYYY-MM-DD). 없으면 오늘", "pattern": "` + datePattern + `"}
				},
				"required": ["period"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "get_income_summary",
			Description: "사용자가 수입 합계를 알고 싶어할 때 호출한다. 예: '이번 달 수입 총액 얼마야?'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"period": {"type": "string", "description": "조회 기간", "enum": ["day", "week", "month", "year"]},
					"date": {"type": "string", "description": "기준 날짜(YYYY-MM-DD). 없으면 오늘", "pattern": "` + datePattern + `"}
				},
				"required": ["period"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "create_reply",
			Description: "사용자가 게시글에 댓글을 '작성/등록'하길 원할 때 호출한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"bno": {"type": "integer", "minimum": 1, "description": "게시글 ID(board number)"},
					"content": {"type": "string", "minLength": 1, "maxLength": 3000, "description": "댓글 내용"}
				},
				"required": ["bno", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_replies",
			Description: "사용자가 특정 게시글의 댓글을 '조회/목록'으로 보길 원할 때 호출한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"bno": {"type": "integer", "minimum": 1, "description": "게시글 ID(board number)"},
					"limit": {"type": "integer", "minimum": 10, "maximum": 20, "description": "가져올 개수(기본 10, 최대 20)"}
				},
				"required": ["bno"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "delete_reply",
			Description: "사용자가 특정 댓글을 '삭제'하길 원할 때 호출한다. reply_id가 없으면 먼저 list_replies로 ID를 확인해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"reply_id": {"type": "integer", "minimum": 1, "description": "삭제할 댓글 ID"}
				},
				"required": ["reply_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "update_reply",
			Description: "사용자가 댓글을 수정/변경하길 원할 때 호출한다. reply_id가 없으면 list_replies로 먼저 ID를 확인해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"reply_id": {"type": "integer", "minimum": 1, "description": "수정할 댓글 ID"},
					"content": {"type": "string", "minLength": 1, "maxLength": 3000, "description": "수정할 댓글 내용"}
				},
				"required": ["reply_id", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "create_notice",
			Description: "공지사항을 작성한다. 예: '공지 제목은 ... 내용은 ... 으로 공지 올려줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "minLength": 1, "maxLength": 200},
					"content": {"type": "string", "minLength": 1, "maxLength": 5000},
					"imageUrl": {"type": "string", "maxLength": 500}
				},
				"required": ["title", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_notices",
			Description: "공지사항 목록을 조회한다. 예: '공지사항 10개 보여줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "minimum": 10, "maximum": 20, "description": "가져올 개수(기본 10, 최대 20)"}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "delete_notice",
			Description: "공지사항을 삭제한다. notice_id가 없으면 list_notices로 먼저 ID를 확인해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"notice_id": {"type": "integer", "minimum": 1}
				},
				"required": ["notice_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "update_notice",
			Description: "공지사항을 수정한다. notice_id가 없으면 list_notices로 먼저 ID를 확인해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"notice_id": {"type": "integer", "minimum": 1, "description": "수정할 공지 ID"},
					"title": {"type": "string", "minLength": 1, "maxLength": 200, "description": "공지 제목"},
					"content": {"type": "string", "minLength": 1, "maxLength": 5000, "description": "공지 내용"},
					"imageUrl": {"type": "string", "maxLength": 500, "description": "이미지 URL(선택)"}
				},
				"required": ["notice_id", "title", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_members",
			Description: "회원 목록을 조회한다(관리자 전용). 예: '회원 10명 보여줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "minimum": 10, "maximum": 20, "description": "가져올 개수(기본 10, 최대 20)"}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "verify_password",
			Description: "로그인한 사용자의 비밀번호가 맞는지 검증한다. 예: '내 비밀번호 확인해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"password": {"type": "string", "minLength": 1, "maxLength": 200}
				},
				"required": ["password"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "delete_member",
			Description: "회원 계정을 삭제한다(본인 또는 관리자만 가능). 예: '내 계정 삭제해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"member_id": {"type": "integer", "minimum": 1}
				},
				"required": ["member_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "update_member_info",
			Description: "로그인한 사용자의 회원 정보를 수정한다. " +
				"nickname 또는 password 중 최소 1개를 제공해야 한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"nickname": {"type": "string", "minLength": 1, "maxLength": 50, "description": "새 닉네임(선택)"},
					"password": {"type": "string", "minLength": 1, "maxLength": 200, "description": "새 비밀번호(선택)"}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "create_budget",
			Description: "예산을 생성(등록)한다. 예: '2026년 1월 예산을 50만원으로 등록해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"year": {"type": "integer", "minimum": 2000, "maximum": 2100},
					"month": {"type": "integer", "minimum": 1, "maximum": 12},
					"limitAmount": {"type": "integer", "minimum": 0, "maximum": 200000000},
					"usedAmount": {"type": "integer", "minimum": 0, "maximum": 200000000}
				},
				"required": ["year", "month", "limitAmount"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_budgets",
			Description: "특정 회원(mid)의 예산 목록을 조회한다.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"mid": {"type": "integer", "minimum": 1},
					"limit": {"type": "integer", "minimum": 10, "maximum": 20}
				},
				"required": ["mid"],
				"additionalProperties": false
			}`),
		},
		{
			Name: "adjust_budget_limit",
			Description: "로그인한 사용자의 월 예산 한도를 증감(delta)한다. " +
				"예: '이번 달 예산을 5만원 올려줘'. delta는 +면 증가, -면 감소.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"mid": {"type": "integer", "minimum": 1, "description": "대상 회원 ID(보통 본인)"},
					"delta": {"type": "integer", "minimum": -200000000, "maximum": 200000000, "description": "예산 증감액(+/-)"}
				},
				"required": ["mid", "delta"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "create_board",
			Description: "게시글을 작성한다. 예: '제목은 ... 내용은 ... 으로 게시글 올려줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "minLength": 1, "maxLength": 200},
					"content": {"type": "string", "minLength": 1, "maxLength": 5000},
					"imageUrl": {"type": "string", "maxLength": 500}
				},
				"required": ["title", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "get_board",
			Description: "게시글 단건을 조회한다. 예: '게시글 10번 보여줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"board_id": {"type": "integer", "minimum": 1}
				},
				"required": ["board_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "delete_board",
			Description: "게시글을 삭제한다(본인 글만). 예: '게시글 10번 삭제해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"board_id": {"type": "integer", "minimum": 1}
				},
				"required": ["board_id"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "list_boards",
			Description: "게시글 목록을 조회한다. 예: '게시글 10개 보여줘', '게시글 검색어: 투자 로 찾아줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"page": {"type": "integer", "minimum": 1, "maximum": 1000, "description": "페이지(1부터)"},
					"limit": {"type": "integer", "minimum": 10, "maximum": 20, "description": "가져올 개수(10~20)"},
					"keyword": {"type": "string", "maxLength": 100, "description": "검색어(선택)"},
					"types": {"type": "string", "maxLength": 10, "description": "검색 타입(선택). 예: 'tc' (title+content)"}
				},
				"required": [],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "update_board",
			Description: "게시글을 수정한다(본인 글만). 예: '게시글 3번 제목/내용 수정해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"board_id": {"type": "integer", "minimum": 1},
					"title": {"type": "string", "minLength": 1, "maxLength": 200},
					"content": {"type": "string", "minLength": 1, "maxLength": 5000},
					"imageUrl": {"type": "string", "maxLength": 500}
				},
				"required": ["board_id", "title", "content"],
				"additionalProperties": false
			}`),
		},
		{
			Name:        "sign_in",
			Description: "아이디/비밀번호로 로그인(JWT 발급). 예: '아이디 a, 비밀번호 b로 로그인해줘'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"username": {"type": "string", "minLength": 1, "maxLength": 50},
					"password": {"type": "string", "minLength": 1, "maxLength": 200}
				},
				"required": ["username", "password"],
				"additionalProperties": false
			}`),
		},
	}
}
