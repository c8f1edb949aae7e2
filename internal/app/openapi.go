package app

// OpenAPISpec is the OpenAPI 3.0 specification served at /docs/openapi.yaml
var OpenAPISpec = []byte(`openapi: 3.0.3
info:
  title: Response Analytics API
  description: |
    Pairs inbound messages with their replies, computes response-time
    statistics, a composite performance score, and actionable insights
    per connected account.
  version: 1.0.0

servers:
  - url: /api/v1

paths:
  /responses/metrics:
    get:
      summary: Response time statistics for a period
      parameters:
        - $ref: '#/components/parameters/AccountID'
        - $ref: '#/components/parameters/Platform'
        - $ref: '#/components/parameters/Range'
      responses:
        '200':
          description: Statistics for the selected period
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/ResponseMetrics'
        '400':
          $ref: '#/components/responses/BadRequest'

  /responses/score:
    get:
      summary: Composite response performance score
      parameters:
        - $ref: '#/components/parameters/AccountID'
        - $ref: '#/components/parameters/Platform'
        - $ref: '#/components/parameters/Range'
      responses:
        '200':
          description: Score with factor breakdown
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/ResponseScore'
        '400':
          $ref: '#/components/responses/BadRequest'

  /responses/insights:
    get:
      summary: Ranked insights for a period
      parameters:
        - $ref: '#/components/parameters/AccountID'
        - $ref: '#/components/parameters/Platform'
        - $ref: '#/components/parameters/Range'
      responses:
        '200':
          description: Up to eight insights ordered by confidence
          content:
            application/json:
              schema:
                type: object
                properties:
                  insights:
                    type: array
                    items:
                      $ref: '#/components/schemas/Insight'
        '400':
          $ref: '#/components/responses/BadRequest'

  /responses/windows:
    get:
      summary: Matched response windows, newest first
      parameters:
        - $ref: '#/components/parameters/AccountID'
        - $ref: '#/components/parameters/Platform'
        - $ref: '#/components/parameters/Range'
        - name: limit
          in: query
          schema: { type: integer, default: 50, maximum: 100 }
        - name: offset
          in: query
          schema: { type: integer, default: 0 }
      responses:
        '200':
          description: One page of response windows
          content:
            application/json:
              schema:
                type: object
                properties:
                  windows:
                    type: array
                    items:
                      $ref: '#/components/schemas/ResponseWindow'
                  total: { type: integer }
                  has_more: { type: boolean }
        '400':
          $ref: '#/components/responses/BadRequest'

  /responses/sync:
    post:
      summary: Ingest new message events for an account
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [account_id]
              properties:
                account_id: { type: string }
      responses:
        '202':
          description: Sync completed
        '400':
          $ref: '#/components/responses/BadRequest'
        '404':
          description: Account not found

  /responses/snapshots:
    post:
      summary: Archive a metrics and score snapshot
      parameters:
        - $ref: '#/components/parameters/AccountID'
        - $ref: '#/components/parameters/Platform'
        - $ref: '#/components/parameters/Range'
      responses:
        '200':
          description: Object key of the archived snapshot
          content:
            application/json:
              schema:
                type: object
                properties:
                  key: { type: string }

  /responses/participants/{participantId}/exclude:
    post:
      summary: Toggle a participant's exclusion from matching
      parameters:
        - name: participantId
          in: path
          required: true
          schema: { type: string }
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [account_id]
              properties:
                account_id: { type: string }
                excluded: { type: boolean, default: true }
      responses:
        '200':
          description: Number of events updated
        '400':
          $ref: '#/components/responses/BadRequest'

components:
  parameters:
    AccountID:
      name: account_id
      in: query
      required: true
      schema: { type: string }
    Platform:
      name: platform
      in: query
      schema: { type: string }
    Range:
      name: range
      in: query
      schema:
        type: string
        enum: [today, week, month, quarter, year]
        default: week

  responses:
    BadRequest:
      description: Invalid request parameters
      content:
        application/json:
          schema:
            type: object
            properties:
              error: { type: string }

  schemas:
    ResponseMetrics:
      type: object
      properties:
        sample_count: { type: integer }
        median_seconds: { type: number }
        mean_seconds: { type: number }
        p90_seconds: { type: number }
        p95_seconds: { type: number }
        min_seconds: { type: number }
        max_seconds: { type: number }
        working_hours_median_seconds: { type: number, nullable: true }
        non_working_hours_median_seconds: { type: number, nullable: true }
        previous_median_seconds: { type: number, nullable: true }
        trend_percentage: { type: number, nullable: true }

    ResponseScore:
      type: object
      properties:
        overall: { type: integer }
        speed: { type: integer }
        consistency: { type: integer }
        coverage: { type: integer }
        trend: { type: integer }
        improvement: { type: integer }
        grade: { type: string }
        color: { type: string }
        sample_count: { type: integer }
        median_seconds: { type: number }
        strengths:
          type: array
          items: { type: string }
        weaknesses:
          type: array
          items: { type: string }

    Insight:
      type: object
      properties:
        type: { type: string }
        icon: { type: string }
        color: { type: string }
        title: { type: string }
        description: { type: string }
        suggestion: { type: string }
        confidence: { type: number }
        sample_count: { type: integer }

    ResponseWindow:
      type: object
      properties:
        id: { type: string }
        account_id: { type: string }
        conversation_id: { type: string }
        platform: { type: string }
        participant_id: { type: string }
        inbound_event_id: { type: string }
        outbound_event_id: { type: string }
        inbound_at: { type: string, format: date-time }
        latency_seconds: { type: number }
        confidence: { type: number }
        method: { type: string }
        day_of_week: { type: integer }
        hour_of_day: { type: integer }
        is_working_hours: { type: boolean }
        is_valid_for_analytics: { type: boolean }
`)
